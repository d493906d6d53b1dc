// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Back     key.Binding
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Reload   key.Binding

	// Imports switches to the import history.
	Imports key.Binding

	// Import starts an import run.
	Import key.Binding

	// Trash moves the shown product to trash; Confirm and Cancel answer
	// the prompt that follows.
	Trash   key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "n"),
			key.WithHelp("→/n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "p"),
			key.WithHelp("←/p", "prev page"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Imports: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "imports"),
		),
		Import: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start import"),
		),
		Trash: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "trash"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar by default.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ProductsHelp returns the bindings of the product list.
func (k *KeyMap) ProductsHelp() []key.Binding {
	return []key.Binding{k.Select, k.NextPage, k.PrevPage, k.Imports, k.Quit}
}

// ProductHelp returns the bindings of the product detail view.
func (k *KeyMap) ProductHelp() []key.Binding {
	return []key.Binding{k.Trash, k.Back}
}

// ImportsHelp returns the bindings of the import history.
func (k *KeyMap) ImportsHelp() []key.Binding {
	return []key.Binding{k.Import, k.Reload, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.NextPage, k.PrevPage},
		{k.Imports, k.Import, k.Reload},
		{k.Trash, k.Confirm, k.Cancel},
		{k.Back, k.Help, k.Quit},
	}
}
