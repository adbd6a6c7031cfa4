package failures

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	btable "github.com/evertras/bubble-table/table"

	"junitdash/progress"
	"junitdash/query"
	"junitdash/testreport"
	"junitdash/tui/components/footer"
	"junitdash/tui/components/querybar"
	"junitdash/tui/components/table"
	"junitdash/tui/keys"
	"junitdash/tui/styles"
	"junitdash/tui/testresults"
)

type editField int

const (
	editNone editField = iota
	editNotes
	editAssignee
	editSearch
)

type keyMap struct {
	Toggle     key.Binding
	SelectAll  key.Binding
	Unselect   key.Binding
	Pending    key.Binding
	InProgress key.Binding
	Completed  key.Binding
	Notes      key.Binding
	Assignee   key.Binding
	Reset      key.Binding
	Confirm    key.Binding
}

var actions = keyMap{
	Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	SelectAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
	Unselect:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unselect")),
	Pending:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "pending")),
	InProgress: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "in progress")),
	Completed:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
	Notes:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notes")),
	Assignee:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "assignee")),
	Reset:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset all")),
	Confirm:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
}

// ProgressChangedMsg is sent after the tracker was modified
type ProgressChangedMsg struct{}

// Component lists failing tests with their resolution progress and edits it
type Component struct {
	keys    keys.GlobalKeyMap
	footer  *footer.Component
	table   *table.Component
	input   textinput.Model
	detail  viewport.Model
	state   *querybar.State
	tracker *progress.Tracker

	report    *testreport.Report
	rows      []query.FailureRow
	current   query.Page[query.FailureRow]
	selection *progress.Selection

	editing      editField
	editID       string
	showDetail   bool
	confirmReset bool
	message      string
}

// New creates a failure list backed by tracker
func New(tracker *progress.Tracker, pageSize int) *Component {
	statuses := make([]string, 0, len(progress.Statuses))
	for _, s := range progress.Statuses {
		statuses = append(statuses, string(s))
	}
	c := &Component{
		keys:      keys.DefaultGlobalKeys(),
		footer:    footer.New(),
		table:     table.New(styles.FailureColumns),
		input:     textinput.New(),
		detail:    viewport.New(80, 20),
		state:     querybar.New(pageSize, statuses),
		tracker:   tracker,
		selection: progress.NewSelection(),
	}
	c.table.SetFocused(true)
	return c
}

// Init initializes the component
func (c *Component) Init() tea.Cmd {
	return nil
}

// SetReport shows the failing tests of report
func (c *Component) SetReport(report *testreport.Report) {
	c.report = report
	c.selection.Clear()
	c.state.SetSuites(query.Options(report.FailingTests()).Suites)
	c.refresh()
}

// Capturing reports whether keystrokes are consumed by an editor or dialog
func (c *Component) Capturing() bool {
	return c.editing != editNone || c.showDetail || c.confirmReset
}

// Selection returns the ids marked for bulk updates
func (c *Component) Selection() *progress.Selection {
	return c.selection
}

// Page returns the rows currently on screen
func (c *Component) Page() query.Page[query.FailureRow] {
	return c.current
}

// State exposes the filter, sort and page of the view
func (c *Component) State() *querybar.State {
	return c.state
}

// Message returns the last action feedback
func (c *Component) Message() string {
	return c.message
}

// Refresh rebuilds the rows from the tracker
func (c *Component) Refresh() {
	c.refresh()
}

func (c *Component) refresh() {
	if c.report == nil {
		return
	}
	c.rows = query.FailureRows(c.tracker.Rows(c.report))
	c.current = query.Run(c.rows, c.state.Query())
	c.state.Settle(c.current.Number)

	rows := make([]btable.Row, 0, len(c.current.Items))
	for _, r := range c.current.Items {
		mark := ""
		if c.selection.Contains(r.Progress.ID) {
			mark = "✓"
		}
		rows = append(rows, btable.NewRow(btable.RowData{
			table.IDKey:           r.Progress.ID,
			styles.ColumnSelected: mark,
			styles.ColumnName:     r.Name,
			styles.ColumnSuite:    r.Suite,
			styles.ColumnProgress: btable.NewStyledCell(string(r.Progress.Status), styles.Progress(r.Progress.Status)),
			styles.ColumnAssignee: r.Progress.Assignee,
			styles.ColumnError:    firstLine(r.Progress.ErrorMessage),
		}))
	}
	c.table.SetRows(rows)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func (c *Component) highlighted() (query.FailureRow, bool) {
	i := c.table.HighlightedIndex()
	if i < 0 || i >= len(c.current.Items) {
		return query.FailureRow{}, false
	}
	return c.current.Items[i], true
}

// Update handles incoming messages
func (c *Component) Update(msg tea.Msg) (*Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.table.SetHeight(max(msg.Height-13, 3))
		c.detail.Width = max(msg.Width-4, 20)
		c.detail.Height = max(msg.Height-8, 5)
		return c, nil

	case tea.KeyMsg:
		switch {
		case c.editing != editNone:
			return c.updateEditor(msg)
		case c.showDetail:
			if key.Matches(msg, c.keys.Back) || key.Matches(msg, c.keys.Enter) {
				c.showDetail = false
				return c, nil
			}
			var cmd tea.Cmd
			c.detail, cmd = c.detail.Update(msg)
			return c, cmd
		case c.confirmReset:
			c.confirmReset = false
			if key.Matches(msg, actions.Confirm) {
				return c, c.reset()
			}
			c.message = "Reset cancelled"
			return c, nil
		}
		return c.updateList(msg)
	}
	return c, nil
}

func (c *Component) startEdit(field editField, value, placeholder string) tea.Cmd {
	c.editing = field
	c.input.Placeholder = placeholder
	c.input.SetValue(value)
	c.input.CursorEnd()
	return c.input.Focus()
}

func (c *Component) updateEditor(msg tea.KeyMsg) (*Component, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if c.editing == editSearch {
			c.state.SetSearch(c.input.Value())
			c.refresh()
		}
		c.editing = editNone
		c.input.Blur()
		return c, nil
	case tea.KeyEnter:
		field := c.editing
		c.editing = editNone
		c.input.Blur()
		if field == editSearch {
			return c, nil
		}
		return c, c.saveEdit(field, c.input.Value())
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if c.editing == editSearch {
		c.state.SetSearch(c.input.Value())
		c.refresh()
	}
	return c, cmd
}

func (c *Component) saveEdit(field editField, value string) tea.Cmd {
	item, ok := c.tracker.Item(c.editID)
	if !ok {
		c.message = "This failure is not tracked yet; reset progress to include it"
		return nil
	}
	opt := progress.WithNotes(value)
	if field == editAssignee {
		opt = progress.WithAssignee(value)
	}
	return c.apply(c.tracker.UpdateStatus(item.ID, item.Status, opt), "Saved")
}

func (c *Component) apply(err error, ok string) tea.Cmd {
	switch {
	case errors.Is(err, progress.ErrUnknownItem):
		c.message = "This failure is not tracked yet; reset progress to include it"
	case err != nil:
		c.message = err.Error()
	default:
		c.message = ok
	}
	c.refresh()
	return func() tea.Msg { return ProgressChangedMsg{} }
}

func (c *Component) setStatus(status progress.Status) tea.Cmd {
	if c.selection.Len() > 0 {
		n, err := c.tracker.BulkUpdateSelection(c.selection, status)
		return c.apply(err, fmt.Sprintf("Marked %d as %s", n, status))
	}
	row, ok := c.highlighted()
	if !ok {
		return nil
	}
	return c.apply(c.tracker.UpdateStatus(row.Progress.ID, status), fmt.Sprintf("Marked %s as %s", row.Name, status))
}

func (c *Component) reset() tea.Cmd {
	c.selection.Clear()
	err := c.tracker.ClearAll()
	if err == nil && c.report != nil {
		err = c.tracker.InitializeIfAbsent(c.report)
	}
	return c.apply(err, "Progress reset")
}

func (c *Component) updateList(msg tea.KeyMsg) (*Component, tea.Cmd) {
	switch {
	case key.Matches(msg, c.keys.Up), key.Matches(msg, c.keys.Down):
		var cmd tea.Cmd
		c.table, cmd = c.table.Update(msg)
		return c, cmd
	case key.Matches(msg, c.keys.Enter):
		if row, ok := c.highlighted(); ok {
			c.detail.SetContent(details(row))
			c.detail.GotoTop()
			c.showDetail = true
		}
		return c, nil
	case key.Matches(msg, actions.Toggle):
		if row, ok := c.highlighted(); ok {
			c.selection.Toggle(row.Progress.ID)
		}
	case key.Matches(msg, actions.SelectAll):
		for _, row := range c.current.Items {
			c.selection.Select(row.Progress.ID)
		}
	case key.Matches(msg, actions.Unselect):
		c.selection.Clear()
	case key.Matches(msg, actions.Pending):
		return c, c.setStatus(progress.StatusPending)
	case key.Matches(msg, actions.InProgress):
		return c, c.setStatus(progress.StatusInProgress)
	case key.Matches(msg, actions.Completed):
		return c, c.setStatus(progress.StatusCompleted)
	case key.Matches(msg, actions.Notes), key.Matches(msg, actions.Assignee):
		row, ok := c.highlighted()
		if !ok {
			return c, nil
		}
		c.editID = row.Progress.ID
		if key.Matches(msg, actions.Notes) {
			return c, c.startEdit(editNotes, row.Progress.Notes, "notes")
		}
		return c, c.startEdit(editAssignee, row.Progress.Assignee, "assignee")
	case key.Matches(msg, actions.Reset):
		c.confirmReset = true
		return c, nil
	case key.Matches(msg, c.keys.Search):
		return c, c.startEdit(editSearch, c.state.Filter.Search, "name, suite, error, notes or assignee")
	case key.Matches(msg, c.keys.Status):
		c.state.CycleStatus()
	case key.Matches(msg, c.keys.Suite):
		c.state.CycleSuite()
	case key.Matches(msg, c.keys.Sort):
		c.state.CycleSort()
	case key.Matches(msg, c.keys.Reverse):
		c.state.Reverse()
	case key.Matches(msg, c.keys.Clear):
		c.state.Clear()
	case key.Matches(msg, c.keys.NextPage):
		c.state.NextPage()
	case key.Matches(msg, c.keys.PrevPage):
		c.state.PrevPage()
	default:
		return c, nil
	}
	c.refresh()
	return c, nil
}

func details(row query.FailureRow) string {
	var b strings.Builder
	p := row.Progress
	fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render("Progress:"), styles.Progress(p.Status).Render(string(p.Status)))
	if p.Assignee != "" {
		fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render("Assignee:"), p.Assignee)
	}
	if p.UpdatedAt != "" {
		fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render("Updated:"), p.UpdatedAt)
	}
	if p.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", styles.HeaderStyle.Render("Notes"), p.Notes)
	}
	if !row.Tracked {
		b.WriteString(styles.WarningStyle.Render("Not tracked in the stored progress"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(testresults.Details(row.Record))
	return b.String()
}

// View renders the component
func (c *Component) View() string {
	if c.report == nil {
		return "No failures loaded"
	}
	if c.showDetail {
		return fmt.Sprintf("%s\n\n%s\n\n%s",
			styles.HeaderStyle.Render("Failure details"),
			c.detail.View(),
			c.footer.View("", "", c.keys.Up, c.keys.Down, c.keys.Back))
	}

	var b strings.Builder
	summary := c.tracker.Summary()
	fmt.Fprintf(&b, "%s %d pending   %d in progress   %d completed   (%.1f%% resolved)\n",
		styles.LabelStyle.Render("Resolution:"),
		summary.Pending, summary.InProgress, summary.Completed, summary.PercentComplete())
	b.WriteString(c.state.View())
	b.WriteString("\n")
	if c.editing != editNone {
		b.WriteString(c.input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if len(c.current.Items) == 0 {
		b.WriteString(styles.HelpStyle.Render("No failures match the current filters"))
	} else {
		b.WriteString(c.table.View())
	}
	b.WriteString("\n")

	status := fmt.Sprintf("Showing %d-%d of %d   page %d/%d   %d selected",
		c.current.First(), c.current.Last(), c.current.TotalItems, c.current.Number, c.current.TotalPages, c.selection.Len())
	if c.message != "" {
		status += "   " + c.message
	}
	warning := ""
	switch {
	case c.confirmReset:
		warning = "Delete all stored failure progress? Press y to confirm"
	case c.tracker.Dirty():
		warning = "Progress could not be saved; changes are only kept in memory"
	}

	bindings := append(c.keys.Navigation(), c.keys.Enter,
		actions.Toggle, actions.SelectAll, actions.Unselect,
		actions.Pending, actions.InProgress, actions.Completed,
		actions.Notes, actions.Assignee, actions.Reset)
	bindings = append(bindings, c.keys.Query()...)
	b.WriteString(c.footer.View(status, warning, bindings...))
	return b.String()
}
