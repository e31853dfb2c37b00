package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the remote-style bindings of the guide.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Remote
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	ChannelUp   key.Binding
	ChannelDown key.Binding
	OK          key.Binding
	Back        key.Binding
	Digit       key.Binding

	// Popup
	ScrollUp   key.Binding
	ScrollDown key.Binding

	// Fatal screen
	Retry key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "Up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "Down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "Earlier"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "Later"),
		),
		ChannelUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Channel up"),
		),
		ChannelDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "Channel down"),
		),
		OK: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "OK"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "Back"),
		),
		Digit: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("0-9", "Channel number"),
		),

		ScrollUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "Scroll details"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "Scroll details"),
		),

		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Retry"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.OK, k.Back, k.Digit, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ChannelUp, k.ChannelDown, k.Digit},
		{k.OK, k.Back},
		{k.CycleTheme, k.Help, k.Quit},
	}
}

// popupKeys is the footer shown while the program popup is open.
type popupKeys struct {
	keys keyMap
}

func (p popupKeys) ShortHelp() []key.Binding {
	choose := key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "Choose"))
	return []key.Binding{choose, p.keys.OK, p.keys.ScrollDown, p.keys.Back}
}

func (p popupKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{p.ShortHelp()}
}
