package testresults

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	btable "github.com/evertras/bubble-table/table"

	"junitdash/query"
	"junitdash/testreport"
	"junitdash/tui/components/footer"
	"junitdash/tui/components/querybar"
	"junitdash/tui/components/table"
	"junitdash/tui/keys"
	"junitdash/tui/styles"
)

var statuses = []string{
	string(testreport.StatusPassed),
	string(testreport.StatusFailed),
	string(testreport.StatusSkipped),
}

// Component lists every test of a report with search, filters, sorting
// and pagination, and shows the details of one test on demand
type Component struct {
	keys   keys.GlobalKeyMap
	footer *footer.Component
	table  *table.Component
	search textinput.Model
	detail viewport.Model
	state  *querybar.State

	rows    []query.TestRow
	current query.Page[query.TestRow]

	searching  bool
	showDetail bool
	width      int
	height     int
}

// New creates a test list showing pageSize rows per page
func New(pageSize int) *Component {
	search := textinput.New()
	search.Placeholder = "name, suite or class"
	search.Prompt = "/ "

	c := &Component{
		keys:   keys.DefaultGlobalKeys(),
		footer: footer.New(),
		table:  table.New(styles.TestColumns),
		search: search,
		detail: viewport.New(80, 20),
		state:  querybar.New(pageSize, statuses),
	}
	c.table.SetFocused(true)
	return c
}

// Init initializes the component
func (c *Component) Init() tea.Cmd {
	return nil
}

// SetReport replaces the rows with the tests of report
func (c *Component) SetReport(report *testreport.Report) {
	c.rows = query.TestRows(report)
	c.state.SetSuites(query.Options(report.Records()).Suites)
	c.showDetail = false
	c.refresh()
}

// Capturing reports whether keystrokes are consumed as text input
func (c *Component) Capturing() bool {
	return c.searching || c.showDetail
}

// Page returns the rows currently on screen
func (c *Component) Page() query.Page[query.TestRow] {
	return c.current
}

// State exposes the filter, sort and page of the view
func (c *Component) State() *querybar.State {
	return c.state
}

// Selected returns the highlighted test
func (c *Component) Selected() (query.TestRow, bool) {
	i := c.table.HighlightedIndex()
	if i < 0 || i >= len(c.current.Items) {
		return query.TestRow{}, false
	}
	return c.current.Items[i], true
}

// refresh recomputes the page from the full row set
func (c *Component) refresh() {
	c.current = query.Run(c.rows, c.state.Query())
	c.state.Settle(c.current.Number)

	rows := make([]btable.Row, 0, len(c.current.Items))
	for i, r := range c.current.Items {
		rows = append(rows, btable.NewRow(btable.RowData{
			table.IDKey:            fmt.Sprintf("%d", i),
			styles.ColumnName:      r.Name,
			styles.ColumnSuite:     r.Suite,
			styles.ColumnClassName: r.ClassName,
			styles.ColumnStatus:    btable.NewStyledCell(string(r.Status), styles.Status(r.Status)),
			styles.ColumnTime:      query.FormatDuration(r.Time),
		}))
	}
	c.table.SetRows(rows)
}

// Update handles incoming messages
func (c *Component) Update(msg tea.Msg) (*Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width, c.height = msg.Width, msg.Height
		// Reserve lines for tabs, query bar, header and footer
		c.table.SetHeight(max(msg.Height-12, 3))
		c.detail.Width = max(msg.Width-4, 20)
		c.detail.Height = max(msg.Height-8, 5)
		return c, nil

	case tea.KeyMsg:
		if c.searching {
			return c.updateSearch(msg)
		}
		if c.showDetail {
			return c.updateDetail(msg)
		}
		return c.updateList(msg)
	}
	return c, nil
}

func (c *Component) updateSearch(msg tea.KeyMsg) (*Component, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		c.searching = false
		c.search.Blur()
		return c, nil
	}
	var cmd tea.Cmd
	c.search, cmd = c.search.Update(msg)
	c.state.SetSearch(c.search.Value())
	c.refresh()
	return c, cmd
}

func (c *Component) updateDetail(msg tea.KeyMsg) (*Component, tea.Cmd) {
	if key.Matches(msg, c.keys.Back) || key.Matches(msg, c.keys.Enter) {
		c.showDetail = false
		return c, nil
	}
	var cmd tea.Cmd
	c.detail, cmd = c.detail.Update(msg)
	return c, cmd
}

func (c *Component) updateList(msg tea.KeyMsg) (*Component, tea.Cmd) {
	switch {
	case key.Matches(msg, c.keys.Up), key.Matches(msg, c.keys.Down):
		var cmd tea.Cmd
		c.table, cmd = c.table.Update(msg)
		return c, cmd
	case key.Matches(msg, c.keys.Enter):
		if row, ok := c.Selected(); ok {
			c.detail.SetContent(Details(row.Record))
			c.detail.GotoTop()
			c.showDetail = true
		}
		return c, nil
	case key.Matches(msg, c.keys.Search):
		c.searching = true
		c.search.SetValue(c.state.Filter.Search)
		return c, c.search.Focus()
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
		c.search.SetValue("")
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

// View renders the component
func (c *Component) View() string {
	if c.rows == nil {
		return "No test results available"
	}
	if c.showDetail {
		return fmt.Sprintf("%s\n\n%s\n\n%s",
			styles.HeaderStyle.Render("Test details"),
			c.detail.View(),
			c.footer.View("", "", c.keys.Up, c.keys.Down, c.keys.Back))
	}

	var b strings.Builder
	b.WriteString(c.state.View())
	b.WriteString("\n")
	if c.searching {
		b.WriteString(c.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if len(c.current.Items) == 0 {
		b.WriteString(styles.HelpStyle.Render("No tests match the current filters"))
	} else {
		b.WriteString(c.table.View())
	}
	b.WriteString("\n")

	status := fmt.Sprintf("Showing %d-%d of %d   page %d/%d",
		c.current.First(), c.current.Last(), c.current.TotalItems, c.current.Number, c.current.TotalPages)
	bindings := append(c.keys.Navigation(), c.keys.Enter)
	bindings = append(bindings, c.keys.Query()...)
	b.WriteString(c.footer.View(status, "", bindings...))
	return b.String()
}

// Details renders everything known about one test
func Details(rec testreport.Record) string {
	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render(label+":"), value)
	}
	section := func(title, body string) {
		if body == "" {
			return
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", styles.HeaderStyle.Render(title), body)
	}

	field("Name", rec.Name)
	field("Suite", rec.Suite)
	field("Class", rec.ClassName)
	field("Status", styles.Status(rec.Status).Render(string(rec.Status)))
	field("Time", query.FormatDuration(rec.Time))
	if info, ok := testreport.Classify(rec.Name); ok {
		field("Module", info.Module)
		field("Page", info.Page)
		field("Account", info.AccountType)
	}
	field("Skip reason", rec.SkipMessage)
	section("Message", rec.Message())
	if d := rec.FailureDetails; d != nil {
		field("Type", d.Type)
		section("Stack trace", d.StackTrace)
	}
	section("Standard output", rec.SystemOut)
	section("Standard error", rec.SystemErr)
	return strings.TrimRight(b.String(), "\n")
}
