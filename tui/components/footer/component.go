package footer

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"junitdash/tui/styles"
)

// Component renders a status line and the active key bindings
type Component struct {
	style  lipgloss.Style
	status lipgloss.Style
	warn   lipgloss.Style
}

// New creates a new footer component
func New() *Component {
	return &Component{
		style:  styles.HelpStyle,
		status: styles.LabelStyle,
		warn:   styles.WarningStyle,
	}
}

// View renders status followed by the enabled bindings. A warning, when
// set, replaces the status text.
func (c *Component) View(status, warning string, bindings ...key.Binding) string {
	var lines []string
	switch {
	case warning != "":
		lines = append(lines, c.warn.Render(warning))
	case status != "":
		lines = append(lines, c.status.Render(status))
	}

	var parts []string
	for _, b := range bindings {
		if f := Format(b); f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) > 0 {
		lines = append(lines, c.style.Render(strings.Join(parts, "  ")))
	}
	return strings.Join(lines, "\n")
}

// Format renders a binding as "[key] description", or "" when disabled
func Format(b key.Binding) string {
	if !b.Enabled() {
		return ""
	}
	h := b.Help()
	if h.Key == "" || h.Desc == "" {
		return ""
	}
	return "[" + h.Key + "] " + h.Desc
}
