package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tavla.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUpsertAndFetchPreservesArrivalOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	records := []app.Record{
		{ID: "t2", Title: "second", Status: "Todo"},
		{ID: "t1", Title: "first", Status: "Done"},
		{ID: "t3", Title: "third", Status: "In Progress"},
	}
	for _, r := range records {
		if err := store.UpsertRecord(ctx, r, now); err != nil {
			t.Fatalf("UpsertRecord() error = %v", err)
		}
	}

	// Updating an existing record must not change its position.
	if err := store.UpsertRecord(ctx, app.Record{ID: "t2", Title: "second v2", Status: "Doing"}, now.Add(time.Minute)); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}

	got, err := store.FetchRecords(ctx)
	if err != nil {
		t.Fatalf("FetchRecords() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	wantOrder := []string{"t2", "t1", "t3"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("unexpected order at %d: %q", i, got[i].ID)
		}
	}
	if got[0].Title != "second v2" || got[0].Status != "Doing" {
		t.Fatalf("upsert did not update fields: %+v", got[0])
	}
}

func TestUpsertRequiresID(t *testing.T) {
	store := newTestStore(t)
	if err := store.UpsertRecord(context.Background(), app.Record{Title: "no id"}, time.Now()); err == nil {
		t.Fatal("expected error for record without id")
	}
}

func TestApplyChangeUpdatesByExternalID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	if err := store.UpsertRecord(ctx, app.Record{ID: "t1", ExternalID: "row-7", Title: "one", Status: "Todo"}, now); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}
	evt := domain.ChangeEvent{
		TaskRef:        "row-7",
		NewStatus:      "Done",
		PreviousStatus: "To Do",
		Title:          "one",
		Timestamp:      now.Add(time.Minute),
	}
	if err := store.ApplyChange(ctx, evt, now.Add(time.Minute)); err != nil {
		t.Fatalf("ApplyChange() error = %v", err)
	}

	got, err := store.FetchRecords(ctx)
	if err != nil {
		t.Fatalf("FetchRecords() error = %v", err)
	}
	if got[0].Status != "Done" {
		t.Fatalf("expected persisted status Done, got %q", got[0].Status)
	}

	changes, err := store.ListChanges(ctx, 10)
	if err != nil {
		t.Fatalf("ListChanges() error = %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected one change event, got %d", len(changes))
	}
	if changes[0].TaskRef != "row-7" || changes[0].NewStatus != "Done" || changes[0].PreviousStatus != "To Do" {
		t.Fatalf("unexpected change event %+v", changes[0])
	}
	if !changes[0].Timestamp.Equal(evt.Timestamp) {
		t.Fatalf("unexpected timestamp %v", changes[0].Timestamp)
	}
}

func TestApplyChangeFallsBackToLocalID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.UpsertRecord(ctx, app.Record{ID: "t1", Title: "one", Status: "Todo"}, now); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}
	if err := store.ApplyChange(ctx, domain.ChangeEvent{TaskRef: "t1", NewStatus: "Done"}, now); err != nil {
		t.Fatalf("ApplyChange() error = %v", err)
	}
	got, err := store.FetchRecords(ctx)
	if err != nil {
		t.Fatalf("FetchRecords() error = %v", err)
	}
	if got[0].Status != "Done" {
		t.Fatalf("expected status Done via local id, got %q", got[0].Status)
	}
}

func TestMoveThenFetchConverges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.UpsertRecord(ctx, app.Record{ID: "t1", Title: "one", Status: "In Progress"}, now); err != nil {
		t.Fatalf("UpsertRecord() error = %v", err)
	}

	defs := []domain.ColumnDefinition{}
	for _, c := range []struct {
		id, title string
		aliases   []string
	}{
		{"todo", "To Do", []string{"To Do", "Todo"}},
		{"progress", "In Progress", []string{"In Progress"}},
		{"done", "Done", []string{"Done"}},
	} {
		def, err := domain.NewColumnDefinition(c.id, c.title, c.aliases, "")
		if err != nil {
			t.Fatalf("NewColumnDefinition() error = %v", err)
		}
		defs = append(defs, def)
	}

	eng, err := app.NewEngine(app.EngineConfig{
		Definitions: defs,
		Source:      store,
		OnChange: func(evt domain.ChangeEvent) {
			if applyErr := store.ApplyChange(ctx, evt, time.Now()); applyErr != nil {
				t.Errorf("ApplyChange() error = %v", applyErr)
			}
		},
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := eng.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if _, ok := eng.MoveTask("t1", "progress", "done"); !ok {
		t.Fatal("expected move to succeed")
	}
	if !eng.Board().Tasks["t1"].Optimistic {
		t.Fatal("expected optimistic flag after move")
	}

	// The listener persisted the move, so the next refresh converges.
	if err := eng.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	task := eng.Board().Tasks["t1"]
	if task.Status != "Done" {
		t.Fatalf("unexpected status %q", task.Status)
	}
	if task.Optimistic {
		t.Fatal("expected optimistic flag cleared after store round-trip")
	}
}
