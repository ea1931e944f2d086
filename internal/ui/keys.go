package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the viewer.
type keyMap struct {
	// Navigation
	First    key.Binding
	Latest   key.Binding
	Previous key.Binding
	Next     key.Binding
	Random   key.Binding
	Goto     key.Binding

	// Scheduling
	ToggleSuspend key.Binding

	// Global
	NextInstance key.Binding
	PrevInstance key.Binding
	ToggleLogs   key.Binding
	CycleTheme   key.Binding
	Help         key.Binding
	Quit         key.Binding

	// Prompt
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		First: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First"),
		),
		Latest: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Latest"),
		),
		Previous: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Next"),
		),
		Random: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Random"),
		),
		Goto: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "Go to number"),
		),

		ToggleSuspend: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Suspend/resume"),
		),

		NextInstance: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next instance"),
		),
		PrevInstance: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous instance"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Toggle log pane"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Next, k.Random, k.Goto, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay, one group per section.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.First, k.Latest, k.Previous, k.Next, k.Random, k.Goto},
		{k.ToggleSuspend, k.NextInstance, k.PrevInstance},
		{k.ToggleLogs, k.CycleTheme, k.Help, k.Quit},
	}
}
