package headless

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"asa-manager/internal/logging"
	"asa-manager/internal/runstatus"
	"asa-manager/internal/ui/headless/health"
	headlessview "asa-manager/internal/ui/headless/view"
)

func (m *headlessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		if _, ok := msg.(quitNowMsg); ok {
			m.cleanup()
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ui = m.ui.WithWindowSize(msg.Width, msg.Height)
		m.ui.ResizeLogs(nonLogLayoutReserveMin, minLogPanelHeight)
		headlessview.ResizePaneViewports(&m.ui)
		return m, nil
	case logMsg:
		wasAtBottom := m.ui.LogView.AtBottom()
		m.ui.LogText = appendLogLinesWithLimit(m.ui.LogText, string(msg), headlessLogLineLimit)
		m.ui.SetLogViewportContent()
		if m.ui.FollowLogs || wasAtBottom {
			m.ui.LogView.GotoBottom()
			m.ui.FollowLogs = true
		}
		return m, waitForLog(m.logCh)
	case statusMsg:
		m.applyRuntimeStatus(string(msg))
		m.refreshSnapshot()
		return m, waitForStatus(m.statusCh)
	case presenceMsg:
		m.refreshSnapshot()
		return m, waitForPresence(m.presenceCh)
	case runDoneMsg:
		m.running = false
		m.starting = false
		m.refreshSnapshot()
		if msg.err != nil {
			m.status = "Stopped (error)"
			m.kind = statusError
			m.ui.ErrorModalText = msg.err.Error()
		} else {
			m.status = runstatus.Stopped
			m.kind = statusIdle
		}
		return m, nil
	case startResultMsg:
		if msg.err != nil {
			m.starting = false
			m.status = "Stopped (error)"
			m.kind = statusError
			m.ui.ErrorModalText = msg.err.Error()
			return m, nil
		}
		m.running = true
		return m, nil
	case actionResultMsg:
		if msg.err != nil {
			m.logger.Warn("dashboard action failed", logging.Field("action", msg.action), logging.Field("error", msg.err))
			m.ui.ErrorModalText = describeActionError(msg.action, msg.err)
		}
		m.refreshSnapshot()
		return m, nil
	case tickMsg:
		if time.Since(m.lastHealthRefresh) >= health.RefreshRate {
			m.refreshSnapshot()
		}
		return m, tickCmd()
	case tea.MouseMsg:
		return m.updateMouseMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *headlessModel) updateMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	previous := m.ui.Selected
	next, cmd, effect, index := headlessview.ReduceMouse(m.ui, msg, len(m.servers), len(m.alerts))
	m.ui = next
	if m.ui.Selected != previous {
		m.refreshSnapshot()
	}
	switch effect {
	case headlessview.MouseEffectConfirmQuitAccept:
		return m, tea.Batch(cmd, m.beginQuitCmd())
	case headlessview.MouseEffectToggleAlert:
		return m, tea.Batch(cmd, m.toggleAlertCmd(index))
	}
	return m, cmd
}

func (m *headlessModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	previous := m.ui.Selected
	next, effect, index := headlessview.ReduceKey(m.ui, msg, len(m.servers))
	m.ui = next
	if m.ui.Selected != previous {
		m.refreshSnapshot()
	}
	switch effect {
	case headlessview.KeyEffectRequestQuit:
		return m, m.requestQuitCmd()
	case headlessview.KeyEffectConfirmQuitAccept:
		return m, m.beginQuitCmd()
	case headlessview.KeyEffectToggleServer:
		return m, m.toggleServerCmd()
	case headlessview.KeyEffectResetPresence:
		return m, m.resetPresenceCmd()
	case headlessview.KeyEffectToggleAlert:
		return m, m.toggleAlertCmd(index)
	case headlessview.KeyEffectDebugChanged:
		m.logger.SetDebugEnabled(m.ui.DebugOn)
		return m, nil
	default:
		return m, nil
	}
}

func (m *headlessModel) requestQuitCmd() tea.Cmd {
	if m.running || m.starting {
		m.ui.ConfirmQuit = true
		m.ui.ConfirmQuitChoice = headlessview.ConfirmQuitChoiceCancel
		return nil
	}
	return m.beginQuitCmd()
}

func (m *headlessModel) beginQuitCmd() tea.Cmd {
	m.quitting = true
	m.ui.ConfirmQuit = false
	return quitProgramCmd()
}

func quitProgramCmd() tea.Cmd {
	return tea.Sequence(func() tea.Msg {
		return tea.DisableMouse()
	}, waitForMouseDrainCmd(), func() tea.Msg {
		return quitNowMsg{}
	})
}

func waitForMouseDrainCmd() tea.Cmd {
	return func() tea.Msg {
		time.Sleep(120 * time.Millisecond)
		return nil
	}
}

func appendLogLinesWithLimit(current string, next string, limit int) string {
	if limit <= 0 {
		return ""
	}
	lines := splitLogLines(current)
	lines = append(lines, splitLogLines(next)...)
	if len(lines) > limit {
		lines = append([]string(nil), lines[len(lines)-limit:]...)
	}
	return strings.Join(lines, "\n")
}

func splitLogLines(input string) []string {
	if input == "" {
		return nil
	}
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
