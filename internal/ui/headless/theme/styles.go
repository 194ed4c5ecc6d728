package theme

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	PanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	FocusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	HelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	SelectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("27"))
	HoverRowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("236"))
	ModalBackdrop    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	ButtonStyle        = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())
	ButtonFocusedStyle = ButtonStyle.BorderForeground(lipgloss.Color("10")).Foreground(lipgloss.Color("10"))
	SegmentBaseStyle   = lipgloss.NewStyle().Padding(0, 1)
	SegmentOnStyle     = SegmentBaseStyle.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	SegmentOffStyle    = SegmentBaseStyle.Foreground(lipgloss.Color("245")).Background(lipgloss.Color("236"))
)

// AlertSwatch renders label in the alert's chat colour, falling back to
// white for values lipgloss cannot use.
func AlertSwatch(label string, hex string, enabled bool) string {
	if !enabled {
		return SegmentOffStyle.Render(label)
	}
	if len(hex) != 7 || hex[0] != '#' {
		hex = "#FFFFFF"
	}
	return SegmentBaseStyle.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color(hex)).Render(label)
}
