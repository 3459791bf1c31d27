package domain

import "strings"

// Task represents one board card projected from a host record.
type Task struct {
	ID          string `json:"id"`
	ExternalID  string `json:"externalId,omitempty"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Priority    string `json:"priority,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	DueLabel    string `json:"due,omitempty"`
	Description string `json:"description,omitempty"`
	Author      Author `json:"author,omitzero"`
	// Optimistic marks a locally moved task whose status the host store
	// has not confirmed yet.
	Optimistic bool `json:"isOptimistic,omitempty"`
}

// Author carries host-supplied author attributes for a task.
type Author struct {
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// TaskInput holds raw field values for constructing a task.
type TaskInput struct {
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

// NewTask constructs a task from host-supplied field values. Only the id is
// required; every other field degrades to an empty string.
func NewTask(in TaskInput) (Task, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return Task{}, ErrInvalidID
	}
	return Task{
		ID:          id,
		ExternalID:  strings.TrimSpace(in.ExternalID),
		Title:       strings.TrimSpace(in.Title),
		Status:      strings.TrimSpace(in.Status),
		Priority:    strings.TrimSpace(in.Priority),
		Assignee:    strings.TrimSpace(in.Assignee),
		DueLabel:    strings.TrimSpace(in.DueLabel),
		Description: strings.TrimSpace(in.Description),
		Author: Author{
			Name:      strings.TrimSpace(in.AuthorName),
			AvatarURL: strings.TrimSpace(in.AuthorAvatar),
		},
	}, nil
}

// StoreIdentity returns the identity used when persisting against the host
// store: the external id when the record carries one, the local id otherwise.
func (t Task) StoreIdentity() string {
	if t.ExternalID != "" {
		return t.ExternalID
	}
	return t.ID
}
