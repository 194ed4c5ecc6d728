package keyboard

import "github.com/charmbracelet/bubbles/key"

type Map struct {
	Up           key.Binding
	Down         key.Binding
	ToggleServer key.Binding
	Reset        key.Binding
	ToggleAlert  key.Binding
	ToggleLogs   key.Binding
	Follow       key.Binding
	Debug        key.Binding
	Activate     key.Binding
	Quit         key.Binding
	ModalToggle  key.Binding
}

func New() Map {
	return Map{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev server"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next server"),
		),
		ToggleServer: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "enable/disable"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset presence"),
		),
		ToggleAlert: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "toggle alert"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "logs"),
		),
		Follow: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "follow"),
		),
		Debug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "debug"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter/space", "activate"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		ModalToggle: key.NewBinding(
			key.WithKeys("tab", "up", "down", "left", "right"),
			key.WithHelp("tab/arrows", "toggle"),
		),
	}
}

func (m Map) ShortHelp() []key.Binding {
	return []key.Binding{m.Down, m.ToggleServer, m.Reset, m.ToggleAlert, m.ToggleLogs, m.Quit}
}

func (m Map) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Up, m.Down, m.ToggleServer, m.Reset},
		{m.ToggleAlert, m.ToggleLogs, m.Follow, m.Debug, m.Quit},
	}
}
