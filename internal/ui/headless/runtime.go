package headless

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"asa-manager/internal/app"
	"asa-manager/internal/arklog"
	"asa-manager/internal/logging"
	"asa-manager/internal/presence"
	"asa-manager/internal/runstatus"
	"asa-manager/internal/runtime"
	"asa-manager/internal/storage"
	"asa-manager/internal/ui/headless/health"
	headlessview "asa-manager/internal/ui/headless/view"
)

const (
	stopWaitTimeout     = 8 * time.Second
	historyQueryTimeout = 500 * time.Millisecond
	playerHistoryLimit  = 99
)

var alertLabels = map[arklog.Kind]string{
	arklog.KindJoin:        "Join",
	arklog.KindLeave:       "Leave",
	arklog.KindPlayerDeath: "Death",
	arklog.KindDinoDeath:   "Dino Death",
	arklog.KindDinoTame:    "Tame",
}

func (m *headlessModel) startManagerCmd() tea.Cmd {
	m.starting = true
	m.status = runstatus.Starting
	m.kind = statusStarting
	opts := m.opts

	return func() tea.Msg {
		err := m.runner.Start(opts, m.logger, runtime.StartHooks{
			OnStatus:   m.onRuntimeStatus,
			OnPresence: m.onRuntimePresence,
			OnExit:     m.onRuntimeExit,
		})
		return startResultMsg{err: err}
	}
}

func (m *headlessModel) onRuntimeStatus(status string) {
	select {
	case m.statusCh <- status:
	default:
		select {
		case <-m.statusCh:
		default:
		}
		m.statusCh <- status
	}
}

// onRuntimePresence runs on the monitor's polling goroutine and must not block.
func (m *headlessModel) onRuntimePresence(server string, count int) {
	select {
	case m.presenceCh <- presenceMsg{server: server, count: count}:
	default:
	}
}

func (m *headlessModel) onRuntimeExit(runErr error) {
	if m.program == nil {
		return
	}
	m.program.Send(runDoneMsg{err: runErr})
}

func (m *headlessModel) applyRuntimeStatus(status string) {
	switch runstatus.Key(status) {
	case runstatus.KeyStarting, runstatus.KeyReconstructing:
		m.status = status
		m.kind = statusStarting
	case runstatus.KeyMonitoring:
		m.status = runstatus.Monitoring
		m.kind = statusMonitoring
		m.running = true
		m.starting = false
	case runstatus.KeyStopping:
		m.status = runstatus.Stopping
		m.kind = statusStopping
	case runstatus.KeyStopped:
		m.status = runstatus.Stopped
		m.kind = statusIdle
		m.running = false
	default:
		m.status = status
	}
}

// refreshSnapshot pulls servers, players and alert rules from the running
// service into the model.
func (m *headlessModel) refreshSnapshot() {
	service := m.runner.Service()
	if service == nil {
		m.servers, m.serverNames, m.players, m.alerts = nil, nil, nil, nil
		m.playerNotes = nil
		m.healthDetail = ""
		return
	}

	infos := service.Servers()
	m.lastHealthRefresh = time.Now()
	m.servers, m.healthDetail = health.Compute(infos, m.lastHealthRefresh)
	m.serverNames = m.serverNames[:0]
	for _, info := range infos {
		m.serverNames = append(m.serverNames, info.Name)
	}
	m.ui = m.ui.WithSelectionClamped(len(m.serverNames))

	m.players, m.playerNotes = nil, nil
	if name, ok := m.selectedServer(); ok {
		m.players, m.playerNotes = loadPlayers(service, name)
	}

	rules := service.AlertRules()
	m.alerts = m.alerts[:0]
	for _, kind := range arklog.Kinds {
		rule, ok := rules[kind]
		if !ok {
			continue
		}
		m.alerts = append(m.alerts, headlessview.AlertToggle{
			Label:   alertLabels[kind],
			Enabled: rule.Enabled,
			Color:   rule.Color,
		})
	}
}

// loadPlayers reads the online list for server and enriches it from the
// player database. Database errors leave the list as the monitor reports it.
func loadPlayers(service *app.Service, server string) ([]presence.Entry, map[string]string) {
	players := service.OnlinePlayers(server)
	if len(players) == 0 {
		return players, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyQueryTimeout)
	defer cancel()

	sessions, err := service.OpenSessions(ctx, server)
	if err != nil {
		sessions = nil
	}
	visits := make(map[string]int, len(players))
	for _, player := range players {
		if player.UniqueID == "" {
			continue
		}
		_, sightings, err := service.PlayerHistory(ctx, player.UniqueID, playerHistoryLimit)
		if err != nil {
			continue
		}
		visits[player.Name] = len(sightings)
	}
	return applyPlayerHistory(players, sessions, visits)
}

// applyPlayerHistory backdates JoinedAt to the open session start when the
// database has an earlier one, and labels each player with their visit count.
func applyPlayerHistory(players []presence.Entry, sessions []storage.Session, visits map[string]int) ([]presence.Entry, map[string]string) {
	started := make(map[string]time.Time, len(sessions))
	for _, sess := range sessions {
		started[sess.Character] = sess.JoinedAt
	}
	out := make([]presence.Entry, len(players))
	notes := make(map[string]string, len(players))
	for i, player := range players {
		if at, ok := started[player.Name]; ok && !at.IsZero() && (player.JoinedAt.IsZero() || at.Before(player.JoinedAt)) {
			player.JoinedAt = at
		}
		out[i] = player
		switch n := visits[player.Name]; {
		case n >= playerHistoryLimit:
			notes[player.Name] = fmt.Sprintf("%d+ visits", playerHistoryLimit)
		case n == 1:
			notes[player.Name] = "1 visit"
		case n > 1:
			notes[player.Name] = fmt.Sprintf("%d visits", n)
		}
	}
	return out, notes
}

func (m *headlessModel) selectedServer() (string, bool) {
	if m.ui.Selected < 0 || m.ui.Selected >= len(m.serverNames) {
		return "", false
	}
	return m.serverNames[m.ui.Selected], true
}

func (m *headlessModel) serviceAction(action string, fn func(*app.Service) error) tea.Cmd {
	service := m.runner.Service()
	return func() tea.Msg {
		if service == nil {
			return actionResultMsg{action: action, err: app.ErrNotRunning}
		}
		return actionResultMsg{action: action, err: fn(service)}
	}
}

func (m *headlessModel) toggleServerCmd() tea.Cmd {
	name, ok := m.selectedServer()
	if !ok {
		return nil
	}
	enable := true
	if m.ui.Selected < len(m.servers) {
		enable = !m.servers[m.ui.Selected].Enabled
	}
	return m.serviceAction("toggle server", func(service *app.Service) error {
		return service.EnableServer(name, enable)
	})
}

func (m *headlessModel) resetPresenceCmd() tea.Cmd {
	name, ok := m.selectedServer()
	if !ok {
		return nil
	}
	return m.serviceAction("reset presence", func(service *app.Service) error {
		return service.ResetServerPresence(name)
	})
}

func (m *headlessModel) toggleAlertCmd(index int) tea.Cmd {
	if index < 0 || index >= len(arklog.Kinds) {
		return nil
	}
	kind := arklog.Kinds[index]
	return m.serviceAction("toggle alert", func(service *app.Service) error {
		_, err := service.ToggleAlert(kind)
		return err
	})
}

func describeActionError(action string, err error) string {
	if errors.Is(err, app.ErrNotRunning) {
		return fmt.Sprintf("Cannot %s: the manager is not running.", action)
	}
	return fmt.Sprintf("Failed to %s: %v", action, err)
}

func (m *headlessModel) cleanup() {
	m.cleanupOnce.Do(func() {
		m.logger.Debug("headless cleanup started")

		if m.rootCancel != nil {
			m.logger.Debug("canceling headless root context")
			m.rootCancel()
		}

		if m.unsubscribe != nil {
			m.logger.Debug("unsubscribing headless log listener")
			m.unsubscribe()
		}

		m.logger.Debug("stopping runtime controller")
		m.runner.Stop()
		m.logger.Debug("runtime controller stop requested", logging.Field("running", m.runner.IsRunning()))

		m.logger.Debug("headless cleanup complete")
	})
}
