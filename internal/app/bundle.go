package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hylla/tavla/internal/domain"
)

// bundlePayload is the full legacy persistence shape.
type bundlePayload struct {
	Tasks       map[string]domain.Task   `json:"tasks"`
	Columns     map[string]domain.Column `json:"columns"`
	ColumnOrder []string                 `json:"columnOrder"`
}

// LoadBundle ingests a legacy persistence bundle: either the full
// {tasks, columns, columnOrder} shape merged shallowly over an empty board,
// or a flat task array with each task classified individually. A bundle that
// fails to parse leaves the current board unchanged and logs a warning.
func (e *Engine) LoadBundle(data []byte) error {
	board, err := decodeBundle(data, e.defs, e.idGen)
	if err != nil {
		e.logger.Warn("legacy bundle rejected, keeping current board", "err", err)
		return fmt.Errorf("decode bundle: %w", err)
	}
	e.board = board
	return nil
}

// decodeBundle parses either bundle shape into a board honoring the board
// invariants.
func decodeBundle(data []byte, defs []domain.ColumnDefinition, idGen IDGenerator) (*domain.BoardData, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty bundle")
	}

	board := domain.NewBoard(defs)
	if data[0] == '[' {
		var tasks []domain.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("parse task list: %w", err)
		}
		for _, task := range tasks {
			task.ID = strings.TrimSpace(task.ID)
			if task.ID == "" && idGen != nil {
				task.ID = idGen()
			}
			if task.ID == "" {
				continue
			}
			board.AssignTask(task, defs)
		}
		return board, nil
	}

	var payload bundlePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	for id, task := range payload.Tasks {
		if task.ID == "" {
			task.ID = id
		}
		board.Tasks[task.ID] = task
	}
	for id, column := range payload.Columns {
		if column.ID == "" {
			column.ID = id
		}
		clone := column
		board.Columns[clone.ID] = &clone
	}
	if len(payload.ColumnOrder) > 0 {
		board.ColumnOrder = append([]string(nil), payload.ColumnOrder...)
	}
	normalizeBoard(board)
	return board, nil
}

// normalizeBoard repairs a shallow-merged bundle so the board invariants
// hold: the column order covers exactly the column key set, column task
// lists reference only known tasks, and no task id is listed twice.
func normalizeBoard(b *domain.BoardData) {
	order := make([]string, 0, len(b.Columns))
	seen := map[string]struct{}{}
	for _, id := range b.ColumnOrder {
		if _, ok := b.Columns[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	missing := make([]string, 0)
	for id := range b.Columns {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	b.ColumnOrder = append(order, missing...)

	assigned := map[string]struct{}{}
	for _, columnID := range b.ColumnOrder {
		column := b.Columns[columnID]
		kept := make([]string, 0, len(column.TaskIDs))
		for _, taskID := range column.TaskIDs {
			if _, ok := b.Tasks[taskID]; !ok {
				continue
			}
			if _, dup := assigned[taskID]; dup {
				continue
			}
			assigned[taskID] = struct{}{}
			kept = append(kept, taskID)
		}
		column.TaskIDs = kept
	}
}
