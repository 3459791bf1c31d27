package domain

import "strings"

// ColumnDefinition describes one configured board column and the raw status
// strings it accepts. Definitions are fixed for the life of a board.
type ColumnDefinition struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	StatusAliases []string `json:"statusAliases"`
	Color         string   `json:"color,omitempty"`
}

// NewColumnDefinition constructs a column definition. A definition with no
// aliases accepts its own title.
func NewColumnDefinition(id, title string, aliases []string, color string) (ColumnDefinition, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return ColumnDefinition{}, ErrInvalidID
	}
	if title == "" {
		return ColumnDefinition{}, ErrInvalidTitle
	}

	out := make([]string, 0, len(aliases))
	for _, raw := range aliases {
		alias := strings.TrimSpace(raw)
		if alias == "" {
			continue
		}
		out = append(out, alias)
	}

	return ColumnDefinition{
		ID:            id,
		Title:         title,
		StatusAliases: out,
		Color:         strings.TrimSpace(color),
	}, nil
}

// Matches reports whether the definition accepts the given raw status. The
// comparison is case-insensitive.
func (d ColumnDefinition) Matches(status string) bool {
	status = strings.TrimSpace(status)
	for _, alias := range d.StatusAliases {
		if strings.EqualFold(alias, status) {
			return true
		}
	}
	if len(d.StatusAliases) == 0 {
		return strings.EqualFold(d.Title, status)
	}
	return false
}

// PrimaryStatus returns the canonical status written to a task that lands in
// this column: the first alias, or the title when no aliases are declared.
func (d ColumnDefinition) PrimaryStatus() string {
	if len(d.StatusAliases) > 0 {
		return d.StatusAliases[0]
	}
	return d.Title
}

// Column is the view projection of one definition: the same identity and
// aliases plus the ordered task ids currently assigned to it.
type Column struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	StatusAliases []string `json:"statusAliases"`
	Color         string   `json:"color,omitempty"`
	TaskIDs       []string `json:"taskIds"`
}

// columnFromDefinition projects a definition into an empty column.
func columnFromDefinition(d ColumnDefinition) *Column {
	return &Column{
		ID:            d.ID,
		Title:         d.Title,
		StatusAliases: append([]string(nil), d.StatusAliases...),
		Color:         d.Color,
		TaskIDs:       []string{},
	}
}

// contains reports whether the column lists the given task id.
func (c *Column) contains(taskID string) bool {
	for _, id := range c.TaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

// remove deletes the first occurrence of the given task id.
func (c *Column) remove(taskID string) bool {
	for i, id := range c.TaskIDs {
		if id == taskID {
			c.TaskIDs = append(c.TaskIDs[:i], c.TaskIDs[i+1:]...)
			return true
		}
	}
	return false
}
