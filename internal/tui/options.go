package tui

import "time"

type TaskFieldConfig struct {
	ShowPriority bool
	ShowAssignee bool
	ShowDue      bool
}

type Option func(*Model)

func DefaultTaskFieldConfig() TaskFieldConfig {
	return TaskFieldConfig{
		ShowPriority: true,
		ShowAssignee: true,
		ShowDue:      true,
	}
}

func WithTaskFieldConfig(cfg TaskFieldConfig) Option {
	return func(m *Model) {
		m.taskFields = cfg
	}
}

// WithRefreshInterval enables periodic background reconciliation. Zero or
// negative intervals disable the ticker.
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Model) {
		if interval > 0 {
			m.refreshEvery = interval
		}
	}
}
