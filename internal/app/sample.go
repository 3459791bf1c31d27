package app

import "context"

// StaticSource serves a fixed record slice. It backs the sample-data
// fallback and test fixtures.
type StaticSource struct {
	Records []Record
}

// FetchRecords returns a copy of the configured records.
func (s StaticSource) FetchRecords(context.Context) ([]Record, error) {
	return append([]Record(nil), s.Records...), nil
}

// SampleSource returns demo records shown when the authoritative store has
// nothing to offer, so a first launch never traps the user on an empty board.
func SampleSource() StaticSource {
	return StaticSource{Records: []Record{
		{
			ID:          "sample-1",
			Title:       "Review onboarding doc",
			Status:      "To Do",
			Priority:    "high",
			Assignee:    "mika",
			DueLabel:    "Fri",
			Description: "Read through the onboarding guide and note anything out of date.",
			AuthorName:  "Sample Data",
		},
		{
			ID:          "sample-2",
			Title:       "Wire up staging deploy",
			Status:      "In Progress",
			Priority:    "medium",
			Assignee:    "ryo",
			Description: "Staging should deploy from the main branch on every merge.",
			AuthorName:  "Sample Data",
		},
		{
			ID:         "sample-3",
			Title:      "Pick sprint demo time",
			Status:     "To Do",
			Priority:   "low",
			AuthorName: "Sample Data",
		},
		{
			ID:          "sample-4",
			Title:       "Fix flaky login test",
			Status:      "Done",
			Priority:    "high",
			Assignee:    "mika",
			Description: "The login spec failed intermittently on CI; pinned the clock.",
			AuthorName:  "Sample Data",
		},
	}}
}
