package styles

import (
	"github.com/charmbracelet/lipgloss"
	btable "github.com/evertras/bubble-table/table"

	"junitdash/progress"
	"junitdash/testreport"
)

// Colors adapt to light and dark terminals
var (
	Primary    = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}
	Secondary  = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	Accent     = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#c4b5fd"}
	PassColor  = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}
	FailColor  = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	SkipColor  = lipgloss.AdaptiveColor{Light: "#a16207", Dark: "#facc15"}
	ErrorColor = FailColor
)

// Common Styles
var (
	BaseStyle = lipgloss.NewStyle().Padding(1, 2)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Padding(0, 2)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(SkipColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Faint(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	ValueStyle = lipgloss.NewStyle().Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true).
			Padding(0, 1)

	PassedStyle  = lipgloss.NewStyle().Foreground(PassColor).Bold(true)
	FailedStyle  = lipgloss.NewStyle().Foreground(FailColor).Bold(true)
	SkippedStyle = lipgloss.NewStyle().Foreground(SkipColor).Bold(true)
)

// Status returns the style of a test outcome
func Status(s testreport.Status) lipgloss.Style {
	switch s {
	case testreport.StatusPassed:
		return PassedStyle
	case testreport.StatusFailed:
		return FailedStyle
	default:
		return SkippedStyle
	}
}

// Progress returns the style of a resolution state
func Progress(s progress.Status) lipgloss.Style {
	switch s {
	case progress.StatusCompleted:
		return PassedStyle
	case progress.StatusInProgress:
		return SkippedStyle
	default:
		return FailedStyle
	}
}

// Column keys shared by the table views
const (
	ColumnID        = "id"
	ColumnSelected  = "selected"
	ColumnName      = "name"
	ColumnSuite     = "suite"
	ColumnClassName = "classname"
	ColumnStatus    = "status"
	ColumnTime      = "time"
	ColumnProgress  = "progress"
	ColumnAssignee  = "assignee"
	ColumnError     = "error"
)

// Table Configuration
var (
	TestColumns = []btable.Column{
		btable.NewColumn(ColumnName, "Test", 44),
		btable.NewColumn(ColumnSuite, "Suite", 20),
		btable.NewColumn(ColumnClassName, "Class", 20),
		btable.NewColumn(ColumnStatus, "Status", 9),
		btable.NewColumn(ColumnTime, "Time", 9),
	}

	FailureColumns = []btable.Column{
		btable.NewColumn(ColumnSelected, " ", 3),
		btable.NewColumn(ColumnName, "Test", 36),
		btable.NewColumn(ColumnSuite, "Suite", 16),
		btable.NewColumn(ColumnProgress, "Progress", 12),
		btable.NewColumn(ColumnAssignee, "Assignee", 12),
		btable.NewColumn(ColumnError, "Error", 32),
	}
)
