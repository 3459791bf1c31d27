package domain

import "fmt"

// BoardData is the in-memory projection of tasks into columns. Columns and
// ColumnOrder always cover the same key set; every id listed in a column
// resolves in Tasks and appears in at most one column.
type BoardData struct {
	Tasks       map[string]Task    `json:"tasks"`
	Columns     map[string]*Column `json:"columns"`
	ColumnOrder []string           `json:"columnOrder"`
}

// NewBoard builds an empty board with one column per definition, in
// definition order.
func NewBoard(defs []ColumnDefinition) *BoardData {
	b := &BoardData{
		Tasks:       map[string]Task{},
		Columns:     map[string]*Column{},
		ColumnOrder: make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		if _, ok := b.Columns[def.ID]; ok {
			continue
		}
		b.Columns[def.ID] = columnFromDefinition(def)
		b.ColumnOrder = append(b.ColumnOrder, def.ID)
	}
	return b
}

// AssignTask inserts the task and appends its id to the column its status
// classifies into. A task that classifies nowhere (no definitions) is stored
// without a column assignment. Re-assigning an id moves it to the classified
// column.
func (b *BoardData) AssignTask(task Task, defs []ColumnDefinition) {
	if task.ID == "" {
		return
	}
	b.detach(task.ID)
	b.Tasks[task.ID] = task
	columnID, ok := Classify(task.Status, defs)
	if !ok {
		return
	}
	column, ok := b.Columns[columnID]
	if !ok {
		return
	}
	column.TaskIDs = append(column.TaskIDs, task.ID)
}

// MoveResult carries the outcome of a completed move for event construction.
type MoveResult struct {
	TaskRef        string
	Title          string
	NewStatus      string
	PreviousStatus string
}

// MoveTask removes the task from the source column, appends it to the target
// column, and rewrites its status to the target's primary status, marking it
// optimistic. The whole mutation happens inside this one call. It returns
// false, leaving the board untouched, when source and target are the same or
// when the task or either column cannot be resolved.
func (b *BoardData) MoveTask(taskID, sourceColumnID, targetColumnID string) (MoveResult, bool) {
	if sourceColumnID == targetColumnID {
		return MoveResult{}, false
	}
	task, ok := b.Tasks[taskID]
	if !ok {
		return MoveResult{}, false
	}
	source, ok := b.Columns[sourceColumnID]
	if !ok {
		return MoveResult{}, false
	}
	target, ok := b.Columns[targetColumnID]
	if !ok {
		return MoveResult{}, false
	}
	if !source.remove(taskID) {
		return MoveResult{}, false
	}
	target.TaskIDs = append(target.TaskIDs, taskID)

	newStatus := ColumnDefinition{Title: target.Title, StatusAliases: target.StatusAliases}.PrimaryStatus()
	task.Status = newStatus
	task.Optimistic = true
	b.Tasks[taskID] = task

	return MoveResult{
		TaskRef:        task.StoreIdentity(),
		Title:          task.Title,
		NewStatus:      newStatus,
		PreviousStatus: source.Title,
	}, true
}

// Clone returns a deep copy so callers can hold a snapshot while the board
// keeps mutating.
func (b *BoardData) Clone() *BoardData {
	out := &BoardData{
		Tasks:       make(map[string]Task, len(b.Tasks)),
		Columns:     make(map[string]*Column, len(b.Columns)),
		ColumnOrder: append([]string(nil), b.ColumnOrder...),
	}
	for id, task := range b.Tasks {
		out.Tasks[id] = task
	}
	for id, column := range b.Columns {
		clone := *column
		clone.StatusAliases = append([]string(nil), column.StatusAliases...)
		clone.TaskIDs = append([]string(nil), column.TaskIDs...)
		out.Columns[id] = &clone
	}
	return out
}

// ColumnsInOrder returns the board's columns in display order.
func (b *BoardData) ColumnsInOrder() []*Column {
	out := make([]*Column, 0, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		if column, ok := b.Columns[id]; ok {
			out = append(out, column)
		}
	}
	return out
}

// Check verifies the board invariants: column order covers exactly the column
// key set, no column lists an unknown task id, and no id appears in more than
// one column.
func (b *BoardData) Check() error {
	seenOrder := map[string]struct{}{}
	for _, id := range b.ColumnOrder {
		if _, ok := b.Columns[id]; !ok {
			return fmt.Errorf("column order references unknown column %q", id)
		}
		if _, dup := seenOrder[id]; dup {
			return fmt.Errorf("column order lists column %q twice", id)
		}
		seenOrder[id] = struct{}{}
	}
	if len(seenOrder) != len(b.Columns) {
		return fmt.Errorf("column order covers %d of %d columns", len(seenOrder), len(b.Columns))
	}
	assigned := map[string]string{}
	for _, columnID := range b.ColumnOrder {
		for _, taskID := range b.Columns[columnID].TaskIDs {
			if _, ok := b.Tasks[taskID]; !ok {
				return fmt.Errorf("column %q lists unknown task %q", columnID, taskID)
			}
			if prev, ok := assigned[taskID]; ok {
				return fmt.Errorf("task %q appears in columns %q and %q", taskID, prev, columnID)
			}
			assigned[taskID] = columnID
		}
	}
	return nil
}

// detach removes the task id from whichever column currently lists it.
func (b *BoardData) detach(taskID string) {
	for _, column := range b.Columns {
		if column.remove(taskID) {
			return
		}
	}
}
