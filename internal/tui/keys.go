package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the bundle inspector
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	FastUp   key.Binding // Move by FastStep.
	FastDown key.Binding
	Toggle   key.Binding
	Pipe     key.Binding
	PageUp   key.Binding // Scroll the open preview.
	PageDown key.Binding
	Quit     key.Binding
}

// FastStep is how far the shifted movement keys move the selection
const FastStep = 5

// DefaultKeyMap is the built-in key binding set
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	FastUp: key.NewBinding(
		key.WithKeys("shift+up", "K"),
		key.WithHelp("shift+↑/K", "up 5"),
	),
	FastDown: key.NewBinding(
		key.WithKeys("shift+down", "J"),
		key.WithHelp("shift+↓/J", "down 5"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "view file"),
	),
	Pipe: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "exit and dump the file to stdout"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "scroll down, loading more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

var pickerUsage = []string{
	"Press UP or DOWN to select a file. Hold SHIFT to move faster",
	"Press ENTER to view a file",
	"Press SPACE to exit the terminal and dump the file to stdout",
	"Press 'q' to quit",
}

var viewerUsage = []string{
	"Press UP or DOWN to select a file. Hold SHIFT to move faster",
	"Press ENTER to stop viewing file, PGUP/PGDN to scroll",
	"Press SPACE to exit the terminal and dump the file to stdout",
	"Press 'q' to quit",
}
