package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/tavla/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	Board() *domain.BoardData
	Refresh(ctx context.Context) error
	MoveTask(taskID, sourceColumnID, targetColumnID string) (domain.ChangeEvent, bool)
	BeginDrag(taskID, sourceColumnID string) bool
	CancelDrag()
	DropOn(targetColumnID string) (domain.ChangeEvent, bool)
	Dragging() (taskID, sourceColumnID string, ok bool)
}

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	taskFields   TaskFieldConfig
	refreshEvery time.Duration

	board          *domain.BoardData
	selectedColumn int
	selectedTask   int

	showInfo   bool
	infoTaskID string
	md         markdownRenderer
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	board *domain.BoardData
	err   error
}

// refreshTickMsg triggers one background reconciliation pass.
type refreshTickMsg time.Time

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:        svc,
		status:     "loading...",
		help:       h,
		keys:       newKeyMap(),
		taskFields: DefaultTaskFieldConfig(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadData}
	if m.refreshEvery > 0 {
		cmds = append(cmds, m.scheduleRefresh())
	}
	return tea.Batch(cmds...)
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.status = "reload failed: " + msg.err.Error()
			if m.board == nil {
				m.err = msg.err
			}
			return m, nil
		}
		m.err = nil
		m.board = msg.board
		m.clampSelections()
		if m.status == "" || m.status == "loading..." || strings.HasPrefix(m.status, "reload failed") {
			m.status = "ready"
		}
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.loadData, m.scheduleRefresh())

	case tea.KeyPressMsg:
		if m.showInfo {
			return m.handleInfoKey(msg)
		}
		return m.handleBoardKey(msg)

	default:
		return m, nil
	}
}

// handleBoardKey handles one key press in board mode.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.moveLeft):
		m.selectedColumn--
		m.clampSelections()
		return m, nil

	case key.Matches(msg, m.keys.moveRight):
		m.selectedColumn++
		m.clampSelections()
		return m, nil

	case key.Matches(msg, m.keys.moveUp):
		m.selectedTask--
		m.clampSelections()
		return m, nil

	case key.Matches(msg, m.keys.moveDown):
		m.selectedTask++
		m.clampSelections()
		return m, nil

	case key.Matches(msg, m.keys.pickUp):
		return m.togglePickUp()

	case key.Matches(msg, m.keys.cancel):
		if _, _, ok := m.svc.Dragging(); ok {
			m.svc.CancelDrag()
			m.status = "drag cancelled"
		}
		return m, nil

	case key.Matches(msg, m.keys.taskInfo):
		if task, ok := m.selectedTaskValue(); ok {
			m.showInfo = true
			m.infoTaskID = task.ID
		}
		return m, nil

	case key.Matches(msg, m.keys.carryLeft):
		return m.moveSelectedBy(-1)

	case key.Matches(msg, m.keys.carryRight):
		return m.moveSelectedBy(1)

	default:
		return m, nil
	}
}

// handleInfoKey dismisses the task-info overlay.
func (m Model) handleInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.taskInfo), key.Matches(msg, m.keys.pickUp):
		m.showInfo = false
		m.infoTaskID = ""
		return m, nil
	default:
		return m, nil
	}
}

// togglePickUp starts a gesture on the selected task, or drops the carried
// task on the selected column when a gesture is already in flight.
func (m Model) togglePickUp() (tea.Model, tea.Cmd) {
	columns := m.orderedColumns()
	if len(columns) == 0 {
		return m, nil
	}
	target := columns[clamp(m.selectedColumn, 0, len(columns)-1)]

	if _, _, dragging := m.svc.Dragging(); dragging {
		if evt, moved := m.svc.DropOn(target.ID); moved {
			m.status = fmt.Sprintf("moved %q to %s", evt.Title, evt.NewStatus)
		} else {
			m.status = "drop ignored"
		}
		m.board = m.svc.Board()
		m.clampSelections()
		return m, nil
	}

	task, ok := m.selectedTaskValue()
	if !ok {
		return m, nil
	}
	if m.svc.BeginDrag(task.ID, target.ID) {
		m.status = fmt.Sprintf("carrying %q", task.Title)
	}
	return m, nil
}

// moveSelectedBy moves the selected task to the column offset places away.
func (m Model) moveSelectedBy(offset int) (tea.Model, tea.Cmd) {
	columns := m.orderedColumns()
	if len(columns) == 0 {
		return m, nil
	}
	sourceIdx := clamp(m.selectedColumn, 0, len(columns)-1)
	targetIdx := sourceIdx + offset
	if targetIdx < 0 || targetIdx >= len(columns) {
		return m, nil
	}
	task, ok := m.selectedTaskValue()
	if !ok {
		return m, nil
	}
	if evt, moved := m.svc.MoveTask(task.ID, columns[sourceIdx].ID, columns[targetIdx].ID); moved {
		m.status = fmt.Sprintf("moved %q to %s", evt.Title, evt.NewStatus)
		m.selectedColumn = targetIdx
	}
	m.board = m.svc.Board()
	m.clampSelections()
	return m, nil
}

// loadData runs one reconciliation pass and snapshots the board.
func (m Model) loadData() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.svc.Refresh(ctx); err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{board: m.svc.Board()}
}

// scheduleRefresh arms the periodic reconciliation ticker.
func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.refreshEvery, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.AltScreen = true
		return v
	}
	if !m.ready || m.board == nil {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	carryTaskID := ""
	if taskID, _, ok := m.svc.Dragging(); ok {
		carryTaskID = taskID
	}

	header := titleStyle.Render("tavla")
	if carryTaskID != "" {
		if task, ok := m.board.Tasks[carryTaskID]; ok {
			header += statusStyle.Render("  carrying: " + truncate(task.Title, 40))
		}
	}

	columns := m.orderedColumns()
	colWidth := m.columnWidthFor(len(columns))
	colHeight := m.columnHeight()

	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
	selectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	carriedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237")).Bold(true)
	optimisticStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	itemSubStyle := lipgloss.NewStyle().Foreground(muted)

	columnViews := make([]string, 0, len(columns))
	for colIdx, column := range columns {
		colAccent := accent
		if strings.TrimSpace(column.Color) != "" {
			colAccent = lipgloss.Color(column.Color)
		}
		colTitle := lipgloss.NewStyle().Bold(true).Foreground(colAccent)

		lines := []string{colTitle.Render(fmt.Sprintf("%s (%d)", column.Title, len(column.TaskIDs)))}
		if len(column.TaskIDs) == 0 {
			lines = append(lines, itemSubStyle.Render("(empty)"))
		}
		for taskIdx, taskID := range column.TaskIDs {
			task, ok := m.board.Tasks[taskID]
			if !ok {
				continue
			}
			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask

			prefix := "   "
			if selected {
				prefix = "│  "
			}
			title := prefix + truncate(task.Title, max(1, colWidth-10))
			if task.Optimistic {
				title += optimisticStyle.Render(" ~")
			}
			switch {
			case task.ID == carryTaskID:
				title = carriedTaskStyle.Render(title)
			case selected:
				title = selectedTaskStyle.Render(title)
			}
			lines = append(lines, title)
			if sub := m.taskSecondary(task); sub != "" {
				lines = append(lines, prefix+itemSubStyle.Render(truncate(sub, max(1, colWidth-10))))
			}
		}

		content := fitLines(strings.Join(lines, "\n"), max(1, colHeight-4))
		style := baseColStyle
		if colIdx == m.selectedColumn {
			style = baseColStyle.BorderForeground(colAccent)
		}
		columnViews = append(columnViews, style.Render(content))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	if m.showInfo {
		if overlay := m.renderTaskInfo(accent, muted); overlay != "" {
			content = overlay
		}
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}

	v := tea.NewView(content + "\n" + helpLine)
	v.AltScreen = true
	return v
}

// renderTaskInfo renders the task-info overlay for the inspected task.
func (m Model) renderTaskInfo(accent, muted color.Color) string {
	task, ok := m.board.Tasks[m.infoTaskID]
	if !ok {
		return ""
	}
	width := clamp(m.width-8, 32, 100)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle := lipgloss.NewStyle().Foreground(muted)

	lines := []string{titleStyle.Render(task.Title), ""}
	lines = append(lines, labelStyle.Render("status: ")+task.Status)
	if task.Optimistic {
		lines = append(lines, labelStyle.Render("sync:   ")+"pending confirmation")
	}
	if m.taskFields.ShowPriority && task.Priority != "" {
		lines = append(lines, labelStyle.Render("prio:   ")+task.Priority)
	}
	if m.taskFields.ShowAssignee && task.Assignee != "" {
		lines = append(lines, labelStyle.Render("owner:  ")+task.Assignee)
	}
	if m.taskFields.ShowDue && task.DueLabel != "" {
		lines = append(lines, labelStyle.Render("due:    ")+task.DueLabel)
	}
	if task.Author.Name != "" {
		lines = append(lines, labelStyle.Render("author: ")+task.Author.Name)
	}
	if desc := (&m.md).render(task.Description, width-4); desc != "" {
		lines = append(lines, "", desc)
	}
	lines = append(lines, "", labelStyle.Render("esc close"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// taskSecondary builds the dimmed secondary line under a task title.
func (m Model) taskSecondary(task domain.Task) string {
	parts := make([]string, 0, 3)
	if m.taskFields.ShowPriority && task.Priority != "" {
		parts = append(parts, task.Priority)
	}
	if m.taskFields.ShowAssignee && task.Assignee != "" {
		parts = append(parts, task.Assignee)
	}
	if m.taskFields.ShowDue && task.DueLabel != "" {
		parts = append(parts, task.DueLabel)
	}
	return strings.Join(parts, " • ")
}

// orderedColumns returns the board columns in display order.
func (m Model) orderedColumns() []*domain.Column {
	if m.board == nil {
		return nil
	}
	return m.board.ColumnsInOrder()
}

// selectedTaskValue resolves the task under the cursor.
func (m Model) selectedTaskValue() (domain.Task, bool) {
	columns := m.orderedColumns()
	if len(columns) == 0 {
		return domain.Task{}, false
	}
	column := columns[clamp(m.selectedColumn, 0, len(columns)-1)]
	if len(column.TaskIDs) == 0 {
		return domain.Task{}, false
	}
	taskID := column.TaskIDs[clamp(m.selectedTask, 0, len(column.TaskIDs)-1)]
	task, ok := m.board.Tasks[taskID]
	return task, ok
}

// clampSelections keeps the cursor inside the rendered board.
func (m *Model) clampSelections() {
	columns := m.orderedColumns()
	if len(columns) == 0 {
		m.selectedColumn = 0
		m.selectedTask = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(columns)-1)
	taskCount := len(columns[m.selectedColumn].TaskIDs)
	if taskCount == 0 {
		m.selectedTask = 0
		return
	}
	m.selectedTask = clamp(m.selectedTask, 0, taskCount-1)
}

// columnWidthFor splits the terminal width across the visible columns.
func (m Model) columnWidthFor(columnCount int) int {
	if columnCount == 0 {
		return 24
	}
	width := (m.width / columnCount) - 3
	return clamp(width, 18, 48)
}

// columnHeight bounds column body height to the terminal.
func (m Model) columnHeight() int {
	if m.height <= 0 {
		return 16
	}
	return max(8, m.height-6)
}

// clamp bounds v to the inclusive range [lo, hi].
func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// truncate trims s to at most width cells, appending an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// fitLines pads or trims content to exactly height lines.
func fitLines(content string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
