package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"asa-manager/internal/presence"
	"asa-manager/internal/ui/headless/health"
	"asa-manager/internal/ui/headless/render"
	"asa-manager/internal/ui/headless/theme"
)

// AlertToggle is one chat alert kind as shown in the alert bar.
type AlertToggle struct {
	Label   string
	Enabled bool
	Color   string
}

type Runtime struct {
	BuildVersion string
	Running      bool
	Status       string
	StatusKind   int
	Servers      []health.Row
	HealthDetail string
	Players      []presence.Entry
	PlayerNotes  map[string]string
	Alerts       []AlertToggle
}

const (
	outerPaneGap            = 2
	frameInnerInset         = 4
	serverPaneMinWidth      = 28
	serverPaneMaxWidth      = 44
	playersPaneMinWidth     = 32
	sideBySideMinTotalWidth = 72
	paneInnerMinWidth       = 8
	defaultOverviewHeight   = 8
	largeOverviewHeight     = 12
	largeOverviewCutover    = 40
	onlineColumnWidth       = 4
	platformColumnWidth     = 10
	joinedColumnWidth       = 8
	noteColumnWidth         = 10
	dialogHorizontalInset   = 8
	quitDialogWidth         = 72
	errorDialogWidth        = 78
)

func RenderApp(state *State, rt Runtime) string {
	if state.Width == 0 {
		return "initializing..."
	}

	base := renderBase(state, rt)
	if state.ErrorModalText != "" {
		return renderModalOverlay(state, base, renderErrorDialog(state))
	}
	if state.ConfirmQuit {
		return renderModalOverlay(state, base, renderQuitConfirmDialog(state))
	}
	return base
}

func renderBase(state *State, rt Runtime) string {
	header := theme.TitleStyle.Render("ASA Manager ("+rt.BuildVersion+")") + "  Status: " + RenderStatus(rt.Status, rt.StatusKind)
	overview := renderOverview(state, rt)
	alertBar := renderAlertBar(rt.Alerts)
	helpText := theme.HelpStyle.Render(state.HelpView.View(state.Keys))

	sections := []string{header, overview, alertBar}
	if state.ShowLogs {
		state.FitLogViewportHeight([]string{header, overview, alertBar, helpText}, DefaultNonLogLayoutReserveMin, DefaultMinLogPanelHeight)
		sections = append(sections, renderLogPanel(state))
	}
	sections = append(sections, helpText)

	return renderFrame(strings.Join(sections, "\n\n"), state.ContentWidth())
}

func renderFrame(content string, width int) string {
	return render.Frame(content, width, theme.PanelStyle)
}

func renderOverview(state *State, rt Runtime) string {
	total := state.PageWidth()
	serversWidth, playersWidth, stacked := overviewPaneLayout(total)
	ResizePaneViewports(state)

	state.ServersView.SetContent(renderServerList(state, rt, state.ServersView.Width))
	state.PlayersView.SetContent(renderPlayerList(state, rt, state.PlayersView.Width))
	servers := renderFrame(theme.TitleStyle.Render("Servers")+"\n"+state.ServersView.View(), serversWidth)
	players := renderFrame(theme.TitleStyle.Render(playersTitle(state, rt))+"\n"+state.PlayersView.View(), playersWidth)

	if stacked {
		return servers + "\n" + players
	}
	layout := lipgloss.JoinHorizontal(lipgloss.Top, servers, strings.Repeat(" ", outerPaneGap), players)
	return lipgloss.NewStyle().Width(total).Render(layout)
}

func overviewPaneLayout(total int) (int, int, bool) {
	if total < sideBySideMinTotalWidth {
		return total, total, true
	}
	servers := min(max(total/3, serverPaneMinWidth), serverPaneMaxWidth)
	players := total - servers - outerPaneGap
	if players < playersPaneMinWidth {
		return total, total, true
	}
	return servers, players, false
}

func ResizePaneViewports(state *State) {
	serversWidth, playersWidth, _ := overviewPaneLayout(state.PageWidth())
	height := defaultOverviewHeight
	if state.Height >= largeOverviewCutover {
		height = largeOverviewHeight
	}
	state.ServersView.Width = max(serversWidth-frameInnerInset, paneInnerMinWidth)
	state.ServersView.Height = height
	state.PlayersView.Width = max(playersWidth-frameInnerInset, paneInnerMinWidth)
	state.PlayersView.Height = height
}

func renderServerList(state *State, rt Runtime, width int) string {
	if len(rt.Servers) == 0 {
		placeholder := "Not running"
		if rt.Running && rt.HealthDetail != "" {
			placeholder = rt.HealthDetail
		}
		return theme.HelpStyle.Render(placeholder)
	}

	lines := make([]string, 0, len(rt.Servers))
	for i, row := range rt.Servers {
		dot, style := ServerDotStyle(row.Kind)
		count := fmt.Sprintf("%*d", onlineColumnWidth, row.Online)
		nameWidth := max(width-ansi.StringWidth(dot)-1-onlineColumnWidth-1, 1)
		name := render.PadDisplayWidth(row.Name, nameWidth)
		line := name + " " + count
		switch {
		case i == state.Selected:
			line = theme.SelectedRowStyle.Render(line)
		case state.HoverZone == zoneServerRow(i):
			line = theme.HoverRowStyle.Render(line)
		case !row.Enabled:
			line = theme.MutedStyle.Render(line)
		}
		lines = append(lines, zone.Mark(zoneServerRow(i), style.Render(dot)+" "+line))
	}

	if state.Selected >= 0 && state.Selected < len(rt.Servers) {
		lines = append(lines, "", theme.HelpStyle.Render(render.TruncateDisplayWidth(rt.Servers[state.Selected].Reason, width)))
	}
	return strings.Join(lines, "\n")
}

func playersTitle(state *State, rt Runtime) string {
	if state.Selected < 0 || state.Selected >= len(rt.Servers) {
		return "Online Players"
	}
	row := rt.Servers[state.Selected]
	return fmt.Sprintf("Online on %s (%d)", row.Name, row.Online)
}

func renderPlayerList(state *State, rt Runtime, width int) string {
	if state.Selected < 0 || state.Selected >= len(rt.Servers) {
		return theme.HelpStyle.Render("No server selected")
	}
	if len(rt.Players) == 0 {
		if !rt.Servers[state.Selected].Enabled {
			return theme.HelpStyle.Render("Monitoring disabled")
		}
		return theme.HelpStyle.Render("Nobody online")
	}

	showNotes := len(rt.PlayerNotes) > 0 && width-platformColumnWidth-joinedColumnWidth-noteColumnWidth-3 >= noteColumnWidth
	nameWidth := max(width-platformColumnWidth-joinedColumnWidth-2, 1)
	if showNotes {
		nameWidth -= noteColumnWidth + 1
	}
	lines := make([]string, 0, len(rt.Players))
	for _, player := range rt.Players {
		joined := "--:--:--"
		if !player.JoinedAt.IsZero() {
			joined = player.JoinedAt.Local().Format("15:04:05")
		}
		line := render.PadDisplayWidth(player.Name, nameWidth) + " " +
			theme.HelpStyle.Render(render.PadDisplayWidth(player.Platform, platformColumnWidth)) + " " +
			theme.MutedStyle.Render(joined)
		if showNotes {
			line += " " + theme.HelpStyle.Render(render.PadDisplayWidth(rt.PlayerNotes[player.Name], noteColumnWidth))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderAlertBar(alerts []AlertToggle) string {
	if len(alerts) == 0 {
		return theme.HelpStyle.Render("Alerts: not running")
	}
	parts := make([]string, 0, len(alerts)+1)
	parts = append(parts, theme.TitleStyle.Render("Alerts"))
	for i, alert := range alerts {
		label := fmt.Sprintf("%d %s", i+1, alert.Label)
		parts = append(parts, zone.Mark(zoneAlertToggle(i), theme.AlertSwatch(label, alert.Color, alert.Enabled)))
	}
	return strings.Join(parts, " ")
}

func renderLogPanel(state *State) string {
	check := "[ ] Debug"
	if state.DebugOn {
		check = "[x] Debug"
	}
	followHint := theme.HelpStyle.Render("ctrl+f follow")
	toolbar := lipgloss.JoinHorizontal(lipgloss.Center, theme.TitleStyle.Render("Logs"), "  ", theme.HelpStyle.Render(check), "  ", followHint)
	content := state.LogView.View()
	withBar := WithScrollBar(content, state.LogView.Width, state.LogView.Height, state.LogView.ScrollPercent())

	return zone.Mark(zoneLogs, renderFrame(toolbar+"\n"+withBar, state.PageWidth()))
}

func renderQuitConfirmDialog(state *State) string {
	cancelButton := theme.ButtonStyle.Render("Cancel")
	quitButton := theme.ButtonStyle.Render("Quit")
	if state.ConfirmQuitChoice == ConfirmQuitChoiceCancel {
		cancelButton = theme.ButtonFocusedStyle.Render("Cancel")
	} else {
		quitButton = theme.ButtonFocusedStyle.Render("Quit")
	}

	buttonRow := lipgloss.JoinHorizontal(lipgloss.Top,
		zone.Mark(zoneDialogQuitCancel, cancelButton), "  ", zone.Mark(zoneDialogQuitAccept, quitButton))
	dialogWidth := min(state.ContentWidth()-dialogHorizontalInset, quitDialogWidth)
	buttonLine := lipgloss.NewStyle().
		Width(max(dialogWidth-frameInnerInset, 1)).
		AlignHorizontal(lipgloss.Center).
		Render(buttonRow)

	body := strings.Join([]string{
		theme.TitleStyle.Render("Quit while monitoring?"),
		"Presence tracking and chat alerts stop until the manager is restarted.",
		buttonLine,
		theme.HelpStyle.Render("tab/arrow switch • enter confirms"),
	}, "\n")

	return renderFrame(body, dialogWidth)
}

func renderErrorDialog(state *State) string {
	body := strings.Join([]string{
		theme.ErrorStyle.Render("Error"),
		state.ErrorModalText,
		zone.Mark(zoneDialogErrorClose, theme.HelpStyle.Render("Press Enter or Esc to close")),
	}, "\n")

	return renderFrame(body, min(state.ContentWidth()-dialogHorizontalInset, errorDialogWidth))
}

func renderModalOverlay(state *State, base string, dialog string) string {
	faded := theme.ModalBackdrop.Render(base)
	overlay := lipgloss.Place(state.Width, state.Height, lipgloss.Center, lipgloss.Center, dialog)

	return faded + "\n" + overlay
}
