package app

import (
	"context"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// Record is one raw row from the host's authoritative store. Every field is
// free text; a field the host could not resolve arrives empty.
type Record struct {
	ID           string
	ExternalID   string
	Title        string
	Status       string
	Priority     string
	Assignee     string
	DueLabel     string
	Description  string
	AuthorName   string
	AuthorAvatar string
}

// RecordSource supplies the authoritative record collection a refresh cycle
// rebuilds the board from.
type RecordSource interface {
	FetchRecords(context.Context) ([]Record, error)
}

// ChangeListener observes the change event emitted after each completed move.
// Delivery is fire-and-forget; the engine neither awaits acknowledgment nor
// retries.
type ChangeListener func(domain.ChangeEvent)

// IDGenerator returns unique identifiers for records that arrive without one.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// taskFromRecord projects one host record into a task. Missing fields stay
// empty; only a missing id makes the record unusable.
func taskFromRecord(r Record) (domain.Task, error) {
	return domain.NewTask(domain.TaskInput{
		ID:           r.ID,
		ExternalID:   r.ExternalID,
		Title:        r.Title,
		Status:       r.Status,
		Priority:     r.Priority,
		Assignee:     r.Assignee,
		DueLabel:     r.DueLabel,
		Description:  r.Description,
		AuthorName:   r.AuthorName,
		AuthorAvatar: r.AuthorAvatar,
	})
}
