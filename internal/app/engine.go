package app

import (
	"context"
	"fmt"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/tavla/internal/domain"
)

// Engine owns one board: it rebuilds the projection from host snapshots,
// reconciles unconfirmed local moves, tracks the drag gesture, and applies
// drops. All methods are synchronous and intended for a single event loop;
// callers outside one loop wrap the engine in a SyncedEngine.
type Engine struct {
	defs     []domain.ColumnDefinition
	board    *domain.BoardData
	session  DragSession
	source   RecordSource
	fallback RecordSource
	// forceFallback routes every refresh to the fallback source. It replaces
	// sentinel-value sniffing of records with an explicit switch.
	forceFallback bool
	onChange      ChangeListener
	idGen         IDGenerator
	clock         Clock
	logger        *charmLog.Logger
}

// EngineConfig holds configuration for an engine.
type EngineConfig struct {
	Definitions     []domain.ColumnDefinition
	Source          RecordSource
	Fallback        RecordSource
	UseFallbackData bool
	OnChange        ChangeListener
	IDGen           IDGenerator
	Clock           Clock
	Logger          *charmLog.Logger
}

// NewEngine constructs an engine with an empty board.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	seen := map[string]struct{}{}
	for _, def := range cfg.Definitions {
		if _, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	if cfg.IDGen == nil {
		cfg.IDGen = func() string { return "" }
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = charmLog.Default()
	}
	return &Engine{
		defs:          append([]domain.ColumnDefinition(nil), cfg.Definitions...),
		board:         domain.NewBoard(cfg.Definitions),
		source:        cfg.Source,
		fallback:      cfg.Fallback,
		forceFallback: cfg.UseFallbackData,
		onChange:      cfg.OnChange,
		idGen:         cfg.IDGen,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
	}, nil
}

// Definitions returns the configured column definitions.
func (e *Engine) Definitions() []domain.ColumnDefinition {
	return append([]domain.ColumnDefinition(nil), e.defs...)
}

// Board returns a deep copy of the current projection, safe to render while
// the engine keeps mutating.
func (e *Engine) Board() *domain.BoardData {
	return e.board.Clone()
}

// Refresh rebuilds the board from the authoritative source, carrying
// unconfirmed optimistic moves over per the merge rule. A fetch failure
// leaves the current board in place. A primary source that yields zero
// records falls back to the fallback source rather than rendering an empty
// board.
func (e *Engine) Refresh(ctx context.Context) error {
	src := e.source
	usedFallback := false
	if e.forceFallback && e.fallback != nil {
		src = e.fallback
		usedFallback = true
	}
	if src == nil {
		return ErrNoSource
	}

	records, err := src.FetchRecords(ctx)
	if err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}
	if len(records) == 0 && !usedFallback && e.fallback != nil {
		e.logger.Info("primary source returned no records, using fallback data")
		records, err = e.fallback.FetchRecords(ctx)
		if err != nil {
			return fmt.Errorf("fetch fallback records: %w", err)
		}
	}

	next := domain.NewBoard(e.defs)
	for _, record := range records {
		task, err := taskFromRecord(record)
		if err != nil {
			e.logger.Warn("skipping record without id", "title", record.Title)
			continue
		}
		prev, found := e.board.Tasks[task.ID]
		next.AssignTask(mergeTask(prev, found, task), e.defs)
	}
	e.board = next
	return nil
}

// MoveTask applies a completed move: the task leaves the source column,
// lands at the end of the target column with the target's primary status,
// and is flagged optimistic until a refresh confirms it. Exactly one change
// event is delivered to the listener per successful move. No-op moves return
// false and emit nothing.
func (e *Engine) MoveTask(taskID, sourceColumnID, targetColumnID string) (domain.ChangeEvent, bool) {
	res, ok := e.board.MoveTask(taskID, sourceColumnID, targetColumnID)
	if !ok {
		return domain.ChangeEvent{}, false
	}
	evt := domain.ChangeEvent{
		TaskRef:        res.TaskRef,
		NewStatus:      res.NewStatus,
		PreviousStatus: res.PreviousStatus,
		Title:          res.Title,
		Timestamp:      e.clock().UTC(),
	}
	if e.onChange != nil {
		e.onChange(evt)
	}
	return evt, true
}

// BeginDrag starts a drag gesture for the given task. It returns false when
// the task is not currently listed in the named column, which keeps a stale
// gesture from being captured.
func (e *Engine) BeginDrag(taskID, sourceColumnID string) bool {
	column, ok := e.board.Columns[sourceColumnID]
	if !ok {
		return false
	}
	present := false
	for _, id := range column.TaskIDs {
		if id == taskID {
			present = true
			break
		}
	}
	if !present {
		return false
	}
	e.session.Begin(taskID, sourceColumnID)
	return true
}

// CancelDrag aborts any in-flight gesture.
func (e *Engine) CancelDrag() {
	e.session.Cancel()
}

// Dragging reports the in-flight gesture, if any.
func (e *Engine) Dragging() (taskID, sourceColumnID string, ok bool) {
	return e.session.Current()
}

// DropOn completes the gesture over the given column. The session returns to
// idle whether or not the drop amounts to a move.
func (e *Engine) DropOn(targetColumnID string) (domain.ChangeEvent, bool) {
	intent, ok := e.session.Drop(targetColumnID)
	if !ok {
		return domain.ChangeEvent{}, false
	}
	return e.MoveTask(intent.TaskID, intent.SourceColumnID, intent.TargetColumnID)
}
