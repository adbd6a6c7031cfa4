package table

import (
	tea "github.com/charmbracelet/bubbletea"
	btable "github.com/evertras/bubble-table/table"
)

// IDKey is the row data key holding the row identifier
const IDKey = "id"

// Component wraps a bubble-table model whose rows carry an id
type Component struct {
	table   btable.Model
	focused bool
	height  int
}

// New creates a table with the given columns
func New(columns []btable.Column) *Component {
	return &Component{
		table: btable.New(columns).WithFooterVisibility(false),
	}
}

// SetRows replaces the table contents. The highlight stays on the same
// index when it still exists.
func (c *Component) SetRows(rows []btable.Row) {
	index := c.table.GetHighlightedRowIndex()
	c.table = c.table.WithRows(rows)
	if index >= len(rows) {
		index = len(rows) - 1
	}
	if index < 0 {
		index = 0
	}
	c.table = c.table.WithHighlightedRow(index)
	c.applyHeight()
	if c.focused {
		c.table = c.table.Focused(true)
	}
}

// SetHeight limits how many rows are visible at once
func (c *Component) SetHeight(rows int) {
	c.height = rows
	c.applyHeight()
}

func (c *Component) applyHeight() {
	if c.height > 0 {
		c.table = c.table.WithPageSize(c.height)
	}
}

// SetFocused sets whether the table should be focused
func (c *Component) SetFocused(focused bool) {
	c.focused = focused
	c.table = c.table.Focused(focused)
}

// HighlightedID returns the id of the highlighted row, or "" when empty
func (c *Component) HighlightedID() string {
	row := c.table.HighlightedRow()
	if row.Data == nil {
		return ""
	}
	id, _ := row.Data[IDKey].(string)
	return id
}

// HighlightedIndex returns the position of the highlighted row
func (c *Component) HighlightedIndex() int {
	return c.table.GetHighlightedRowIndex()
}

// Update handles Bubble Tea messages
func (c *Component) Update(msg tea.Msg) (*Component, tea.Cmd) {
	var cmd tea.Cmd
	c.table, cmd = c.table.Update(msg)
	return c, cmd
}

// View renders the table
func (c *Component) View() string {
	return c.table.View()
}
