package keys

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// GlobalKeyMap defines global key bindings used across the application
type GlobalKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Quit     key.Binding
	Back     key.Binding
	Tab      key.Binding
	PrevTab  key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Search   key.Binding
	Status   key.Binding
	Suite    key.Binding
	Sort     key.Binding
	Reverse  key.Binding
	Clear    key.Binding
}

// DefaultGlobalKeys returns the default global key bindings
func DefaultGlobalKeys() GlobalKeyMap {
	return GlobalKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Status: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "status filter"),
		),
		Suite: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "suite filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort field"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reverse"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filters"),
		),
	}
}

// Handler provides a centralized way to handle common key patterns
type Handler struct {
	keys GlobalKeyMap
}

// NewHandler creates a new key handler with default bindings
func NewHandler() *Handler {
	return &Handler{
		keys: DefaultGlobalKeys(),
	}
}

// Keys returns the handler's bindings
func (h *Handler) Keys() GlobalKeyMap {
	return h.keys
}

// HandleGlobalKeys handles global keys that should work in any state
func (h *Handler) HandleGlobalKeys(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, h.keys.Quit) {
		return tea.Quit
	}
	return nil
}

// IsQuit returns true if the key message is a quit command
func (h *Handler) IsQuit(msg tea.KeyMsg) bool {
	return key.Matches(msg, h.keys.Quit)
}

// IsBack returns true if the key message is a back command
func (h *Handler) IsBack(msg tea.KeyMsg) bool {
	return key.Matches(msg, h.keys.Back)
}

// IsTab returns true if the key message moves to the next view
func (h *Handler) IsTab(msg tea.KeyMsg) bool {
	return key.Matches(msg, h.keys.Tab)
}

// IsPrevTab returns true if the key message moves to the previous view
func (h *Handler) IsPrevTab(msg tea.KeyMsg) bool {
	return key.Matches(msg, h.keys.PrevTab)
}

// Navigation returns the bindings shown on every list view
func (k GlobalKeyMap) Navigation() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PrevPage, k.NextPage, k.Tab, k.Quit}
}

// Query returns the bindings that change the filter and sort of a view
func (k GlobalKeyMap) Query() []key.Binding {
	return []key.Binding{k.Search, k.Status, k.Suite, k.Sort, k.Reverse, k.Clear}
}
