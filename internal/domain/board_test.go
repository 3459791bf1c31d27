package domain

import (
	"reflect"
	"testing"
)

func boardWithTask(t *testing.T) (*BoardData, []ColumnDefinition) {
	t.Helper()
	defs := testDefinitions(t)
	board := NewBoard(defs)
	task, err := NewTask(TaskInput{ID: "t1", ExternalID: "row-9", Title: "Ship feature", Status: "Todo"})
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	board.AssignTask(task, defs)
	return board, defs
}

func TestNewBoardShape(t *testing.T) {
	defs := testDefinitions(t)
	board := NewBoard(defs)
	if got := len(board.Columns); got != len(defs) {
		t.Fatalf("expected %d columns, got %d", len(defs), got)
	}
	want := []string{"todo", "progress", "done"}
	if !reflect.DeepEqual(board.ColumnOrder, want) {
		t.Fatalf("unexpected column order %v", board.ColumnOrder)
	}
	for _, column := range board.ColumnsInOrder() {
		if len(column.TaskIDs) != 0 {
			t.Fatalf("expected empty column %q", column.ID)
		}
	}
	if err := board.Check(); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestAssignTaskUsesClassification(t *testing.T) {
	board, _ := boardWithTask(t)
	if !board.Columns["todo"].contains("t1") {
		t.Fatal("expected t1 in todo")
	}
	if err := board.Check(); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestAssignTaskReassignsOnStatusChange(t *testing.T) {
	board, defs := boardWithTask(t)
	task := board.Tasks["t1"]
	task.Status = "Completed"
	board.AssignTask(task, defs)
	if board.Columns["todo"].contains("t1") {
		t.Fatal("expected t1 removed from todo")
	}
	if !board.Columns["done"].contains("t1") {
		t.Fatal("expected t1 in done")
	}
	if err := board.Check(); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestMoveTaskSameColumnIsNoOp(t *testing.T) {
	board, _ := boardWithTask(t)
	before := board.Clone()
	if _, ok := board.MoveTask("t1", "todo", "todo"); ok {
		t.Fatal("expected no-op move")
	}
	if !reflect.DeepEqual(board, before) {
		t.Fatal("board changed on no-op move")
	}
}

func TestMoveTaskUnresolvedIsNoOp(t *testing.T) {
	board, _ := boardWithTask(t)
	before := board.Clone()
	if _, ok := board.MoveTask("missing", "todo", "done"); ok {
		t.Fatal("expected no-op for unknown task")
	}
	if _, ok := board.MoveTask("t1", "todo", "nope"); ok {
		t.Fatal("expected no-op for unknown target column")
	}
	if _, ok := board.MoveTask("t1", "done", "progress"); ok {
		t.Fatal("expected no-op when task is not in source column")
	}
	if !reflect.DeepEqual(board, before) {
		t.Fatal("board changed on rejected move")
	}
}

func TestMoveTaskAppendsAndRewritesStatus(t *testing.T) {
	board, _ := boardWithTask(t)
	res, ok := board.MoveTask("t1", "todo", "done")
	if !ok {
		t.Fatal("expected move to succeed")
	}
	if board.Columns["todo"].contains("t1") {
		t.Fatal("expected t1 removed from todo")
	}
	ids := board.Columns["done"].TaskIDs
	if len(ids) == 0 || ids[len(ids)-1] != "t1" {
		t.Fatalf("expected done to end with t1, got %v", ids)
	}
	task := board.Tasks["t1"]
	if task.Status != "Done" {
		t.Fatalf("unexpected status %q", task.Status)
	}
	if !task.Optimistic {
		t.Fatal("expected task to be flagged optimistic")
	}
	if res.NewStatus != "Done" || res.PreviousStatus != "To Do" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.TaskRef != "row-9" {
		t.Fatalf("expected external identity, got %q", res.TaskRef)
	}
	if err := board.Check(); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestMoveTaskFallsBackToColumnTitle(t *testing.T) {
	review, err := NewColumnDefinition("review", "Review", nil, "")
	if err != nil {
		t.Fatalf("NewColumnDefinition() error = %v", err)
	}
	defs := append(testDefinitions(t), review)
	board := NewBoard(defs)
	task, err := NewTask(TaskInput{ID: "t1", Title: "x", Status: "Todo"})
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	board.AssignTask(task, defs)
	res, ok := board.MoveTask("t1", "todo", "review")
	if !ok {
		t.Fatal("expected move to succeed")
	}
	if res.NewStatus != "Review" {
		t.Fatalf("expected column title as status, got %q", res.NewStatus)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	board, _ := boardWithTask(t)
	snap := board.Clone()
	if _, ok := board.MoveTask("t1", "todo", "done"); !ok {
		t.Fatal("expected move to succeed")
	}
	if !snap.Columns["todo"].contains("t1") {
		t.Fatal("snapshot changed after source board mutation")
	}
	if snap.Tasks["t1"].Optimistic {
		t.Fatal("snapshot task changed after source board mutation")
	}
}

func TestCheckDetectsViolations(t *testing.T) {
	board, _ := boardWithTask(t)
	board.Columns["done"].TaskIDs = append(board.Columns["done"].TaskIDs, "ghost")
	if err := board.Check(); err == nil {
		t.Fatal("expected dangling id to fail Check")
	}

	board, _ = boardWithTask(t)
	board.Columns["done"].TaskIDs = append(board.Columns["done"].TaskIDs, "t1")
	if err := board.Check(); err == nil {
		t.Fatal("expected duplicate assignment to fail Check")
	}

	board, _ = boardWithTask(t)
	board.ColumnOrder = board.ColumnOrder[:2]
	if err := board.Check(); err == nil {
		t.Fatal("expected truncated column order to fail Check")
	}
}

func TestNewTaskValidation(t *testing.T) {
	if _, err := NewTask(TaskInput{ID: "  "}); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	task, err := NewTask(TaskInput{ID: " t1 ", Title: " Ship ", Status: " Done "})
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.ID != "t1" || task.Title != "Ship" || task.Status != "Done" {
		t.Fatalf("unexpected task %+v", task)
	}
	if task.StoreIdentity() != "t1" {
		t.Fatalf("expected local id fallback, got %q", task.StoreIdentity())
	}
	task.ExternalID = "row-1"
	if task.StoreIdentity() != "row-1" {
		t.Fatalf("expected external id preference, got %q", task.StoreIdentity())
	}
}
