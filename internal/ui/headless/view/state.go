package view

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"asa-manager/internal/ui/headless/keyboard"
)

const (
	defaultLogViewWidth  = 80
	defaultLogViewHeight = 20
	defaultPaneWidth     = 24
	defaultPaneHeight    = 8
)

type State struct {
	HelpView help.Model
	Keys     keyboard.Map

	Selected   int
	ShowLogs   bool
	FollowLogs bool
	DebugOn    bool

	LogText     string
	LogView     viewport.Model
	ServersView viewport.Model
	PlayersView viewport.Model

	Width  int
	Height int

	ConfirmQuit       bool
	ConfirmQuitChoice int
	ErrorModalText    string
	HoverZone         string
}

func NewState(debug bool) State {
	helpView := help.New()
	helpView.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	helpView.Styles.FullKey = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	helpView.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpView.Styles.FullDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpView.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpView.Styles.FullSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpView.Styles.Ellipsis = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return State{
		HelpView:    helpView,
		Keys:        keyboard.New(),
		ShowLogs:    true,
		FollowLogs:  true,
		DebugOn:     debug,
		LogView:     viewport.New(defaultLogViewWidth, defaultLogViewHeight),
		ServersView: viewport.New(defaultPaneWidth, defaultPaneHeight),
		PlayersView: viewport.New(defaultPaneWidth, defaultPaneHeight),
	}
}

func (s State) WithWindowSize(width int, height int) State {
	s.Width = width
	s.Height = height
	return s
}

// WithSelectionClamped keeps Selected inside a list of count servers.
func (s State) WithSelectionClamped(count int) State {
	if count <= 0 {
		s.Selected = 0
		return s
	}
	s.Selected = min(max(s.Selected, 0), count-1)
	return s
}
