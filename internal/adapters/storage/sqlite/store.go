// Package sqlite persists the authoritative task records the board engine
// rebuilds from, and the change log written after each move.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// timeLayout is the canonical storage format for timestamps.
const timeLayout = time.RFC3339Nano

// Store represents the sqlite-backed record store.
type Store struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the requested operation.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate handles migrate.
func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			external_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			assignee TEXT NOT NULL DEFAULT '',
			due_label TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			author_name TEXT NOT NULL DEFAULT '',
			author_avatar TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_external_id ON records(external_id);`,
		`CREATE TABLE IF NOT EXISTS change_log (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			task_ref TEXT NOT NULL,
			new_status TEXT NOT NULL,
			previous_status TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			occurred_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// FetchRecords returns every record in arrival order. It implements
// app.RecordSource.
func (s *Store) FetchRecords(ctx context.Context) ([]app.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, external_id, title, status, priority, assignee,
		       due_label, description, author_name, author_avatar
		FROM records ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make([]app.Record, 0)
	for rows.Next() {
		var r app.Record
		if err := rows.Scan(
			&r.ID, &r.ExternalID, &r.Title, &r.Status, &r.Priority,
			&r.Assignee, &r.DueLabel, &r.Description, &r.AuthorName, &r.AuthorAvatar,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// UpsertRecord inserts or replaces one record, preserving arrival order for
// records that already exist.
func (s *Store) UpsertRecord(ctx context.Context, r app.Record, now time.Time) error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("record id is required")
	}
	ts := now.UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (
			id, external_id, title, status, priority, assignee,
			due_label, description, author_name, author_avatar, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			external_id = excluded.external_id,
			title = excluded.title,
			status = excluded.status,
			priority = excluded.priority,
			assignee = excluded.assignee,
			due_label = excluded.due_label,
			description = excluded.description,
			author_name = excluded.author_name,
			author_avatar = excluded.author_avatar,
			updated_at = excluded.updated_at`,
		r.ID, r.ExternalID, r.Title, r.Status, r.Priority, r.Assignee,
		r.DueLabel, r.Description, r.AuthorName, r.AuthorAvatar, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("upsert record %q: %w", r.ID, err)
	}
	return nil
}

// CountRecords returns the number of stored records.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// ApplyChange persists one move notification: the new status is written
// against the task's external identity (falling back to the local id), and
// the event is appended to the change log.
func (s *Store) ApplyChange(ctx context.Context, evt domain.ChangeEvent, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET status = ?, updated_at = ? WHERE external_id = ?`,
		evt.NewStatus, now.UTC().Format(timeLayout), evt.TaskRef,
	)
	if err != nil {
		return fmt.Errorf("update record status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record status: %w", err)
	}
	if affected == 0 {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE records SET status = ?, updated_at = ? WHERE id = ?`,
			evt.NewStatus, now.UTC().Format(timeLayout), evt.TaskRef,
		); err != nil {
			return fmt.Errorf("update record status by id: %w", err)
		}
	}

	occurredAt := evt.Timestamp
	if occurredAt.IsZero() {
		occurredAt = now
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO change_log (task_ref, new_status, previous_status, title, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		evt.TaskRef, evt.NewStatus, evt.PreviousStatus, evt.Title,
		occurredAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("append change log: %w", err)
	}
	return nil
}

// ListChanges returns the most recent change events, newest first.
func (s *Store) ListChanges(ctx context.Context, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_ref, new_status, previous_status, title, occurred_at
		FROM change_log ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ChangeEvent, 0, limit)
	for rows.Next() {
		var evt domain.ChangeEvent
		var occurredAt string
		if err := rows.Scan(&evt.TaskRef, &evt.NewStatus, &evt.PreviousStatus, &evt.Title, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan change event: %w", err)
		}
		if ts, parseErr := time.Parse(timeLayout, occurredAt); parseErr == nil {
			evt.Timestamp = ts
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change log: %w", err)
	}
	return out, nil
}
