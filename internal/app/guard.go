package app

import (
	"context"
	"sync"

	"github.com/hylla/tavla/internal/domain"
)

// SyncedEngine serializes access to an engine for callers that do not share
// one event loop, such as HTTP handlers and bubbletea commands. The engine
// itself stays single-threaded; this wrapper is the only locking in the
// module.
type SyncedEngine struct {
	mu  sync.Mutex
	eng *Engine
}

// NewSyncedEngine wraps an engine.
func NewSyncedEngine(eng *Engine) *SyncedEngine {
	return &SyncedEngine{eng: eng}
}

// Board returns a deep copy of the current projection.
func (s *SyncedEngine) Board() *domain.BoardData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Board()
}

// Definitions returns the configured column definitions.
func (s *SyncedEngine) Definitions() []domain.ColumnDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Definitions()
}

// Refresh runs one reconciliation pass.
func (s *SyncedEngine) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Refresh(ctx)
}

// MoveTask applies one move.
func (s *SyncedEngine) MoveTask(taskID, sourceColumnID, targetColumnID string) (domain.ChangeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.MoveTask(taskID, sourceColumnID, targetColumnID)
}

// BeginDrag starts a drag gesture.
func (s *SyncedEngine) BeginDrag(taskID, sourceColumnID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.BeginDrag(taskID, sourceColumnID)
}

// CancelDrag aborts any in-flight gesture.
func (s *SyncedEngine) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.CancelDrag()
}

// Dragging reports the in-flight gesture, if any.
func (s *SyncedEngine) Dragging() (string, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Dragging()
}

// DropOn completes the gesture over the given column.
func (s *SyncedEngine) DropOn(targetColumnID string) (domain.ChangeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.DropOn(targetColumnID)
}

// LoadBundle ingests a legacy bundle.
func (s *SyncedEngine) LoadBundle(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.LoadBundle(data)
}
