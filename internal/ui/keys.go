package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Logs       key.Binding

	// Feed actions
	Placeholder key.Binding
	League      key.Binding
	Sort        key.Binding
	Details     key.Binding
	Refresh     key.Binding

	// Analysis actions
	Open       key.Binding
	WarmCache  key.Binding
	WarmAll    key.Binding
	ClearCache key.Binding
	Export     key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Log view"),
		),

		Placeholder: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Toggle placeholder match"),
		),
		League: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Cycle league"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		Details: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Fetch match details"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh view"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open squad/player"),
		),
		WarmCache: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Warm missing cache"),
		),
		WarmAll: key.NewBinding(
			key.WithKeys("W"),
			key.WithHelp("W", "Rewarm full cache"),
		),
		ClearCache: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Clear rankings cache"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export analysis"),
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
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("ctrl+u", "Scroll detail up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d", "Scroll detail down"),
		),
	}
}

// ShortHelp returns key bindings for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.League, k.Sort, k.Placeholder, k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Logs, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp},
		{k.League, k.Sort, k.Placeholder, k.Details, k.Refresh},
		{k.Open, k.WarmCache, k.WarmAll, k.ClearCache, k.Export},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
