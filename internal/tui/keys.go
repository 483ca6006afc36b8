package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the demo TUI.
type KeyMap struct {
	// Popup spawners
	Toast key.Binding
	Modal key.Binding
	Alert key.Binding

	// Popup interaction
	Back    key.Binding
	MaskTap key.Binding
	Clear   key.Binding
	Dump    key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toast: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toast"),
		),
		Modal: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "modal"),
		),
		Alert: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "alert"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		MaskTap: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "tap mask"),
		),
		Clear: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "remove all"),
		),
		Dump: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "dump state"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toast, k.Modal, k.Alert, k.Back, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toast, k.Modal, k.Alert},
		{k.Back, k.MaskTap, k.Clear, k.Dump},
		{k.Help, k.Quit},
	}
}
