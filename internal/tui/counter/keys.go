package counter

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the demo key bindings.
type KeyMap struct {
	Increment key.Binding
	Decrement key.Binding
	Set       key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Increment: key.NewBinding(
			key.WithKeys("+", "=", "up", "k"),
			key.WithHelp("+/↑", "increment"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-", "down", "j"),
			key.WithHelp("-/↓", "decrement"),
		),
		Set: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "set value"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increment, k.Decrement, k.Set, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increment, k.Decrement, k.Set},
		{k.Confirm, k.Cancel},
		{k.Help, k.Quit},
	}
}
