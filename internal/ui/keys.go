package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the console.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	Escape     key.Binding
	Reload     key.Binding

	// View switching
	ViewLeads         key.Binding
	ViewOpportunities key.Binding
	ViewActivity      key.Binding

	// Lead actions
	Search      key.Binding
	CycleFilter key.Binding
	ToggleSort  key.Binding
	Edit        key.Binding
	Convert     key.Binding
	FocusDetail key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Activity log
	ToggleFollow key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to leads"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload leads"),
		),

		ViewLeads: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Leads"),
		),
		ViewOpportunities: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Opportunities"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Activity log"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle status filter"),
		),
		ToggleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Toggle score sort"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "E"),
			key.WithHelp("enter", "Edit lead"),
		),
		Convert: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Convert to opportunity"),
		),
		FocusDetail: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Focus detail"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
	}
}

// ShortHelp returns key bindings for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.CycleFilter, k.ToggleSort, k.Edit, k.Convert, k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewLeads, k.ViewOpportunities, k.ViewActivity, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp},
		{k.Search, k.CycleFilter, k.ToggleSort, k.Edit, k.Convert, k.FocusDetail, k.Reload},
		{k.ToggleFollow},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
