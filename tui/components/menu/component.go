package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"junitdash/tui/styles"
)

// Component is a horizontal tab bar
type Component struct {
	items         []string
	selectedIndex int
	styles        Styles
}

// Styles defines the visual styling of the tab bar
type Styles struct {
	ItemStyle     lipgloss.Style
	SelectedStyle lipgloss.Style
	Separator     string
}

// DefaultStyles returns the styling that matches the application theme
func DefaultStyles() Styles {
	return Styles{
		ItemStyle:     styles.TabStyle,
		SelectedStyle: styles.ActiveTabStyle,
		Separator:     "│",
	}
}

// New creates a tab bar with the given items
func New(items []string) *Component {
	return &Component{
		items:  items,
		styles: DefaultStyles(),
	}
}

// SetSelectedIndex sets the current selection
func (c *Component) SetSelectedIndex(index int) {
	if index >= 0 && index < len(c.items) {
		c.selectedIndex = index
	}
}

// GetSelectedIndex returns the current selection index
func (c *Component) GetSelectedIndex() int {
	return c.selectedIndex
}

// GetSelectedItem returns the currently selected item
func (c *Component) GetSelectedItem() string {
	if len(c.items) == 0 || c.selectedIndex < 0 || c.selectedIndex >= len(c.items) {
		return ""
	}
	return c.items[c.selectedIndex]
}

// MenuSelectMsg is sent whenever the selected tab changes
type MenuSelectMsg struct {
	SelectedIndex int
	SelectedItem  string
}

// Next moves to the following tab, wrapping around
func (c *Component) Next() tea.Cmd {
	return c.move(1)
}

// Prev moves to the preceding tab, wrapping around
func (c *Component) Prev() tea.Cmd {
	return c.move(-1)
}

func (c *Component) move(delta int) tea.Cmd {
	if len(c.items) == 0 {
		return nil
	}
	c.selectedIndex = (c.selectedIndex + delta + len(c.items)) % len(c.items)
	index, item := c.selectedIndex, c.GetSelectedItem()
	return func() tea.Msg {
		return MenuSelectMsg{SelectedIndex: index, SelectedItem: item}
	}
}

// View renders the tab bar
func (c *Component) View() string {
	if len(c.items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c.items))
	for i, item := range c.items {
		style := c.styles.ItemStyle
		if i == c.selectedIndex {
			style = c.styles.SelectedStyle
		}
		parts = append(parts, style.Render(item))
	}
	return strings.Join(parts, c.styles.Separator)
}
