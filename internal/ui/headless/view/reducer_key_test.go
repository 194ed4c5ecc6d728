package view

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"asa-manager/internal/presence"
	"asa-manager/internal/ui/headless/health"
)

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func TestReduceKey_SelectionStaysInRange(t *testing.T) {
	state := NewState(false)

	state, _, _ = ReduceKey(state, tea.KeyMsg{Type: tea.KeyUp}, 3)
	if state.Selected != 0 {
		t.Fatalf("Selected after up = %d, want 0", state.Selected)
	}
	for range 5 {
		state, _, _ = ReduceKey(state, tea.KeyMsg{Type: tea.KeyDown}, 3)
	}
	if state.Selected != 2 {
		t.Fatalf("Selected after downs = %d, want 2", state.Selected)
	}
	state, _, _ = ReduceKey(state, runeKey("k"), 3)
	if state.Selected != 1 {
		t.Fatalf("Selected after k = %d, want 1", state.Selected)
	}
}

func TestReduceKey_ServerActionsNeedServers(t *testing.T) {
	state := NewState(false)
	if _, effect, _ := ReduceKey(state, runeKey("e"), 0); effect != KeyEffectNone {
		t.Fatalf("e with no servers effect = %v, want none", effect)
	}
	if _, effect, _ := ReduceKey(state, runeKey("e"), 2); effect != KeyEffectToggleServer {
		t.Fatalf("e effect = %v, want toggle server", effect)
	}
	if _, effect, _ := ReduceKey(state, runeKey("r"), 2); effect != KeyEffectResetPresence {
		t.Fatalf("r effect = %v, want reset presence", effect)
	}
}

func TestReduceKey_AlertDigitsMapToSlots(t *testing.T) {
	state := NewState(false)
	for i, digit := range []string{"1", "2", "3", "4", "5"} {
		_, effect, index := ReduceKey(state, runeKey(digit), 1)
		if effect != KeyEffectToggleAlert || index != i {
			t.Fatalf("ReduceKey(%q) = (%v, %d), want (toggle alert, %d)", digit, effect, index, i)
		}
	}
}

func TestReduceKey_QuitConfirmation(t *testing.T) {
	state := NewState(false)
	state, effect, _ := ReduceKey(state, tea.KeyMsg{Type: tea.KeyCtrlC}, 0)
	if effect != KeyEffectRequestQuit {
		t.Fatalf("ctrl+c effect = %v, want request quit", effect)
	}

	state.ConfirmQuit = true
	state, _, _ = ReduceKey(state, tea.KeyMsg{Type: tea.KeyTab}, 0)
	if state.ConfirmQuitChoice != confirmChoiceQuit {
		t.Fatalf("ConfirmQuitChoice = %d, want quit", state.ConfirmQuitChoice)
	}
	_, effect, _ = ReduceKey(state, tea.KeyMsg{Type: tea.KeyEnter}, 0)
	if effect != KeyEffectConfirmQuitAccept {
		t.Fatalf("enter effect = %v, want confirm quit", effect)
	}

	state, _, _ = ReduceKey(state, tea.KeyMsg{Type: tea.KeyEsc}, 0)
	if state.ConfirmQuit {
		t.Fatalf("ConfirmQuit after esc = true, want false")
	}
}

func TestReduceKey_ErrorModalSwallowsKeys(t *testing.T) {
	state := NewState(false)
	state.ErrorModalText = "boom"
	state, effect, _ := ReduceKey(state, runeKey("e"), 2)
	if effect != KeyEffectNone || state.ErrorModalText == "" {
		t.Fatalf("ReduceKey() closed modal or produced effect %v", effect)
	}
	state, _, _ = ReduceKey(state, tea.KeyMsg{Type: tea.KeyEsc}, 2)
	if state.ErrorModalText != "" {
		t.Fatalf("ErrorModalText after esc = %q, want empty", state.ErrorModalText)
	}
}

func TestRenderApp_ShowsServersPlayersAndAlerts(t *testing.T) {
	zone.NewGlobal()
	state := NewState(false).WithWindowSize(120, 48)
	state.ShowLogs = false
	rt := Runtime{
		BuildVersion: "dev",
		Running:      true,
		Status:       "Monitoring",
		StatusKind:   statusMonitoring,
		Servers: []health.Row{
			{Name: "Island", Kind: health.Active, Enabled: true, Online: 1, Reason: "ShooterGame.log updated 2s ago."},
			{Name: "Scorched", Kind: health.Disabled, Reason: "Monitoring disabled."},
		},
		Players:     []presence.Entry{{Name: "Alpha", Platform: "Steam", JoinedAt: time.Now()}},
		PlayerNotes: map[string]string{"Alpha": "7 visits"},
		Alerts:      []AlertToggle{{Label: "Join", Enabled: true, Color: "#00FF00"}},
	}

	out := ansi.Strip(zone.Scan(RenderApp(&state, rt)))
	for _, want := range []string{"ASA Manager (dev)", "Island", "Scorched", "Alpha", "7 visits", "Online on Island (1)", "1 Join"} {
		if !strings.Contains(out, want) {
			t.Fatalf("RenderApp() missing %q in:\n%s", want, out)
		}
	}
}
