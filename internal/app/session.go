package app

// DragSession tracks the one in-flight drag gesture for a board. The session,
// not the transport event, is the source of truth for what is being dragged:
// the hosting environment may strip or block the native drag payload, so the
// task and source column are captured when the gesture starts.
//
// Each engine owns its own session, so multiple boards in one process never
// interfere.
type DragSession struct {
	active         bool
	taskID         string
	sourceColumnID string
}

// MoveIntent is the move a completed drop asks for.
type MoveIntent struct {
	TaskID         string
	SourceColumnID string
	TargetColumnID string
}

// Begin enters the dragging state, capturing the task and its current column.
// Beginning while already dragging replaces the captured gesture.
func (s *DragSession) Begin(taskID, sourceColumnID string) {
	s.active = true
	s.taskID = taskID
	s.sourceColumnID = sourceColumnID
}

// Cancel returns the session to idle with no side effects. Every path that
// can end a gesture must reach this or Drop, or the session would stay stuck
// in the dragging state.
func (s *DragSession) Cancel() {
	*s = DragSession{}
}

// Active reports whether a gesture is in flight.
func (s *DragSession) Active() bool {
	return s.active
}

// Current returns the captured gesture while dragging.
func (s *DragSession) Current() (taskID, sourceColumnID string, ok bool) {
	if !s.active {
		return "", "", false
	}
	return s.taskID, s.sourceColumnID, true
}

// Drop ends the gesture. It yields a move intent only when the session was
// dragging and the drop target differs from the captured source column;
// anything else is a no-op. The session is idle afterwards either way.
func (s *DragSession) Drop(targetColumnID string) (MoveIntent, bool) {
	defer s.Cancel()
	if !s.active || targetColumnID == s.sourceColumnID {
		return MoveIntent{}, false
	}
	return MoveIntent{
		TaskID:         s.taskID,
		SourceColumnID: s.sourceColumnID,
		TargetColumnID: targetColumnID,
	}, true
}
