package tui

import "github.com/charmbracelet/bubbles/key"

// FormKeyMap defines the submission form bindings.
type FormKeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Submit  key.Binding
	Another key.Binding
	Quit    key.Binding
}

// DefaultFormKeyMap is the built-in form binding set.
var DefaultFormKeyMap = FormKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "submit"),
	),
	Another: key.NewBinding(
		key.WithKeys("n", "enter"),
		key.WithHelp("n", "submit another"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

// DashboardKeyMap defines the dashboard bindings.
type DashboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Resolve key.Binding
	Quit    key.Binding
}

// DefaultDashboardKeyMap is the built-in dashboard binding set.
var DefaultDashboardKeyMap = DashboardKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Resolve: key.NewBinding(
		key.WithKeys("enter", "x"),
		key.WithHelp("x", "resolve"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
