package view

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

type MouseEffect int

const (
	MouseEffectNone MouseEffect = iota
	MouseEffectConfirmQuitAccept
	MouseEffectToggleAlert
)

// ReduceMouse routes clicks through the zones marked by RenderApp. The
// returned index is the alert slot for MouseEffectToggleAlert.
func ReduceMouse(state State, msg tea.MouseMsg, serverCount int, alertCount int) (State, tea.Cmd, MouseEffect, int) {
	click := msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft

	if state.ErrorModalText != "" {
		if click && inZone(zoneDialogErrorClose, msg) {
			state.ErrorModalText = ""
		}
		return state, nil, MouseEffectNone, 0
	}

	if state.ConfirmQuit {
		if !click {
			return state, nil, MouseEffectNone, 0
		}
		switch {
		case inZone(zoneDialogQuitAccept, msg):
			state.ConfirmQuitChoice = confirmChoiceQuit
			return state, nil, MouseEffectConfirmQuitAccept, 0
		case inZone(zoneDialogQuitCancel, msg):
			state.ConfirmQuit = false
		}
		return state, nil, MouseEffectNone, 0
	}

	if msg.Action == tea.MouseActionMotion {
		state.HoverZone = ""
		for i := range serverCount {
			if inZone(zoneServerRow(i), msg) {
				state.HoverZone = zoneServerRow(i)
				break
			}
		}
		return state, nil, MouseEffectNone, 0
	}

	if click {
		for i := range serverCount {
			if inZone(zoneServerRow(i), msg) {
				state.Selected = i
				return state, nil, MouseEffectNone, 0
			}
		}
		for i := range alertCount {
			if inZone(zoneAlertToggle(i), msg) {
				return state, nil, MouseEffectToggleAlert, i
			}
		}
		return state, nil, MouseEffectNone, 0
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	state.PlayersView, cmd = state.PlayersView.Update(msg)
	cmds = append(cmds, cmd)
	if state.ShowLogs && inZone(zoneLogs, msg) {
		state.LogView, cmd = state.LogView.Update(msg)
		cmds = append(cmds, cmd)
		state.FollowLogs = state.LogView.AtBottom()
	}
	return state, tea.Batch(cmds...), MouseEffectNone, 0
}

func inZone(id string, msg tea.MouseMsg) bool {
	return zone.Get(id).InBounds(msg)
}
