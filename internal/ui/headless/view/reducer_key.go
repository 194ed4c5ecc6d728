package view

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type KeyEffect int

const (
	KeyEffectNone KeyEffect = iota
	KeyEffectRequestQuit
	KeyEffectConfirmQuitAccept
	KeyEffectToggleServer
	KeyEffectResetPresence
	KeyEffectToggleAlert
	KeyEffectDebugChanged
)

const confirmChoiceCount = 2

const confirmChoiceQuit = 1

// ReduceKey applies msg to state. The returned index is the alert slot for
// KeyEffectToggleAlert and zero otherwise.
func ReduceKey(state State, msg tea.KeyMsg, serverCount int) (State, KeyEffect, int) {
	if state.ErrorModalText != "" {
		if msg.String() == "esc" || key.Matches(msg, state.Keys.Activate) {
			state.ErrorModalText = ""
		}
		return state, KeyEffectNone, 0
	}

	if state.ConfirmQuit {
		switch {
		case msg.String() == "esc":
			state.ConfirmQuit = false
			return state, KeyEffectNone, 0
		case key.Matches(msg, state.Keys.ModalToggle):
			state.ConfirmQuitChoice = (state.ConfirmQuitChoice + 1) % confirmChoiceCount
			return state, KeyEffectNone, 0
		case key.Matches(msg, state.Keys.Activate):
			if state.ConfirmQuitChoice == confirmChoiceQuit {
				return state, KeyEffectConfirmQuitAccept, 0
			}
			state.ConfirmQuit = false
			return state, KeyEffectNone, 0
		default:
			return state, KeyEffectNone, 0
		}
	}

	switch {
	case key.Matches(msg, state.Keys.Quit):
		return state, KeyEffectRequestQuit, 0
	case key.Matches(msg, state.Keys.Up):
		state.Selected--
		return state.WithSelectionClamped(serverCount), KeyEffectNone, 0
	case key.Matches(msg, state.Keys.Down):
		state.Selected++
		return state.WithSelectionClamped(serverCount), KeyEffectNone, 0
	case key.Matches(msg, state.Keys.ToggleServer):
		if serverCount == 0 {
			return state, KeyEffectNone, 0
		}
		return state, KeyEffectToggleServer, 0
	case key.Matches(msg, state.Keys.Reset):
		if serverCount == 0 {
			return state, KeyEffectNone, 0
		}
		return state, KeyEffectResetPresence, 0
	case key.Matches(msg, state.Keys.ToggleAlert):
		return state, KeyEffectToggleAlert, int(msg.String()[0] - '1')
	case key.Matches(msg, state.Keys.ToggleLogs):
		state.ShowLogs = !state.ShowLogs
		if state.ShowLogs {
			state.FollowLogs = true
			state.LogView.GotoBottom()
		}
		return state, KeyEffectNone, 0
	case key.Matches(msg, state.Keys.Follow) && state.ShowLogs:
		state.FollowLogs = true
		state.LogView.GotoBottom()
		return state, KeyEffectNone, 0
	case key.Matches(msg, state.Keys.Debug):
		state.DebugOn = !state.DebugOn
		return state, KeyEffectDebugChanged, 0
	}

	if state.ShowLogs {
		state.LogView, _ = state.LogView.Update(msg)
		state.FollowLogs = state.LogView.AtBottom()
	}
	return state, KeyEffectNone, 0
}
