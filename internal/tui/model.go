// Package tui is the interactive terminal front end of weighttrack.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"weighttrack/internal/app"
	"weighttrack/internal/domain"
)

type focusArea int

const (
	focusWeight focusArea = iota
	focusDate
	focusHistory
	focusCount
)

const (
	defaultChartWidth = 60
	chartHeight       = 10
)

type loadedMsg struct{ err error }

type actionDoneMsg struct{ err error }

type notificationMsg domain.Notification

// Model is the bubbletea model of the weight tracker screen: entry form,
// sortable history, chart and status line.
type Model struct {
	ctx     context.Context
	tracker *app.Tracker
	notes   <-chan domain.Notification
	unit    string

	weight textinput.Model
	date   textinput.Model
	table  table.Model
	focus  focusArea

	sortField app.SortField
	desc      bool
	sorted    []domain.WeightEntry

	status        domain.Notification
	busy          bool
	pendingDelete string
	pendingLabel  string
	width         int
}

// New creates the model. notes is usually the channel of an
// app.ChanNotifier handed to the tracker; it may be nil.
func New(ctx context.Context, tracker *app.Tracker, notes <-chan domain.Notification, unit string) Model {
	if !domain.ValidUnit(unit) {
		unit = domain.UnitKg
	}

	weight := textinput.New()
	weight.Prompt = "Weight (kg): "
	weight.Placeholder = "72.5"
	weight.CharLimit = 16
	weight.Focus()

	date := textinput.New()
	date.Prompt = "Date:        "
	date.Placeholder = "YYYY-MM-DD or DD/MM/YYYY"
	date.CharLimit = 32

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Weight (" + unit + ")", Width: 12},
		}),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	t.SetStyles(styles)

	return Model{
		ctx:     ctx,
		tracker: tracker,
		notes:   notes,
		unit:    unit,
		weight:  weight,
		date:    date,
		table:   t,
	}
}

// Init loads the collection and starts listening for notifications.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load(), waitForNotification(m.notes))
}

func (m Model) load() tea.Cmd {
	ctx, tracker := m.ctx, m.tracker
	return func() tea.Msg {
		return loadedMsg{err: tracker.Init(ctx)}
	}
}

func (m Model) refresh() tea.Cmd {
	ctx, tracker := m.ctx, m.tracker
	return func() tea.Msg {
		return loadedMsg{err: tracker.Refresh(ctx)}
	}
}

func (m Model) submit() tea.Cmd {
	ctx, tracker := m.ctx, m.tracker
	return func() tea.Msg {
		return actionDoneMsg{err: tracker.Submit(ctx)}
	}
}

func (m Model) remove(id string) tea.Cmd {
	ctx, tracker := m.ctx, m.tracker
	return func() tea.Msg {
		return actionDoneMsg{err: tracker.Remove(ctx, id)}
	}
}

func waitForNotification(ch <-chan domain.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case notificationMsg:
		m.status = domain.Notification(msg)
		return m, waitForNotification(m.notes)

	case loadedMsg:
		m.syncRows()
		return m, nil

	case actionDoneMsg:
		m.busy = false
		m.syncForm()
		m.syncRows()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.pendingDelete != "" {
		switch key {
		case "y", "Y":
			id := m.pendingDelete
			m.pendingDelete, m.pendingLabel = "", ""
			m.busy = true
			return m, m.remove(id)
		case "n", "N", "esc":
			m.pendingDelete, m.pendingLabel = "", ""
		}
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	switch key {
	case "tab":
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case "ctrl+r":
		return m, m.refresh()
	case "esc":
		if m.tracker.Mode() == app.ModeEditing {
			m.tracker.CancelEdit()
			m.syncForm()
			m.setFocus(focusWeight)
		}
		return m, nil
	}

	if m.focus == focusHistory {
		return m.handleHistoryKey(msg)
	}
	if key == "enter" {
		m.busy = true
		return m, m.submit()
	}
	return m.updateInput(msg)
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "e", "enter":
		if e, ok := m.selected(); ok {
			m.tracker.BeginEdit(e)
			m.syncForm()
			m.setFocus(focusWeight)
		}
		return m, nil
	case "d", "delete":
		if e, ok := m.selected(); ok {
			m.pendingDelete = e.ID
			m.pendingLabel = domain.FormatDisplayDate(e.Date)
		}
		return m, nil
	case "s":
		if m.sortField == app.SortByDate {
			m.sortField = app.SortByWeight
		} else {
			m.sortField = app.SortByDate
		}
		m.syncRows()
		return m, nil
	case "r":
		m.desc = !m.desc
		m.syncRows()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateInput forwards msg to the focused text input and mirrors its value
// into the tracker form.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusWeight:
		m.weight, cmd = m.weight.Update(msg)
		m.tracker.SetWeight(m.weight.Value())
	case focusDate:
		m.date, cmd = m.date.Update(msg)
		m.tracker.SetDate(m.date.Value())
	}
	return m, cmd
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.weight.Blur()
	m.date.Blur()
	m.table.Blur()
	switch f {
	case focusWeight:
		m.weight.Focus()
	case focusDate:
		m.date.Focus()
	case focusHistory:
		m.table.Focus()
	}
}

func (m *Model) syncForm() {
	f := m.tracker.Form()
	m.weight.SetValue(f.Weight)
	m.date.SetValue(f.Date)
}

func (m *Model) syncRows() {
	m.sorted = app.SortEntries(m.tracker.Entries(), m.sortField, m.desc)
	rows := make([]table.Row, 0, len(m.sorted))
	for _, r := range app.HistoryRows(m.sorted, m.unit) {
		rows = append(rows, table.Row{r.Date, r.Weight})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) selected() (domain.WeightEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.sorted) {
		return domain.WeightEntry{}, false
	}
	return m.sorted[i], true
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Weight tracker"))
	b.WriteString("\n")

	if m.tracker.Mode() == app.ModeEditing {
		b.WriteString(editingStyle.Render("Editing entry (esc to cancel)"))
	} else {
		b.WriteString(headingStyle.Render("New entry"))
	}
	b.WriteString("\n")
	b.WriteString(m.weight.View())
	b.WriteString("\n")
	b.WriteString(m.date.View())
	b.WriteString("\n")

	order := "ascending"
	if m.desc {
		order = "descending"
	}
	b.WriteString(headingStyle.Render("History"))
	b.WriteString(mutedStyle.Render("  by " + m.sortField.String() + ", " + order))
	b.WriteString("\n")
	if len(m.sorted) == 0 {
		b.WriteString(mutedStyle.Render("No entries yet."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Chart"))
	b.WriteString("\n")
	width := defaultChartWidth
	if m.width > 0 {
		width = min(max(m.width-12, 10), 120)
	}
	b.WriteString(RenderChart(app.BuildSeries(m.tracker.Entries(), m.unit), width, chartHeight))
	b.WriteString("\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("tab focus • enter save • esc cancel edit • e edit • d delete • s sort • r reverse • ctrl+r refresh • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.pendingDelete != "":
		return promptStyle.Render("Delete entry of " + m.pendingLabel + "? (y/n)")
	case m.busy:
		return mutedStyle.Render("Working...")
	case m.status.Message == "":
		return ""
	case m.status.Kind == domain.NotifyError:
		return errorStyle.Render(m.status.Message)
	default:
		return successStyle.Render(m.status.Message)
	}
}
