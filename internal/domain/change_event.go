package domain

import "time"

// ChangeEvent is the outbound notification raised after a completed move.
// The host is expected to persist NewStatus against TaskRef and eventually
// supply a snapshot reflecting it.
type ChangeEvent struct {
	TaskRef        string    `json:"taskId"`
	NewStatus      string    `json:"newStatus"`
	PreviousStatus string    `json:"previousStatus"`
	Title          string    `json:"title"`
	Timestamp      time.Time `json:"timestamp"`
}
