package headless

import (
	zone "github.com/lrstanley/bubblezone"

	headlessview "asa-manager/internal/ui/headless/view"
)

// runtimeView projects mutable runtime state into the render DTO consumed by the view package.
func (m *headlessModel) runtimeView() headlessview.Runtime {
	return headlessview.Runtime{
		BuildVersion: m.buildVersion,
		Running:      m.running,
		Status:       m.status,
		StatusKind:   int(m.kind),
		Servers:      m.servers,
		HealthDetail: m.healthDetail,
		Players:      m.players,
		PlayerNotes:  m.playerNotes,
		Alerts:       m.alerts,
	}
}

// View is the Bubble Tea render entrypoint; rendering is delegated to the pure view package.
func (m *headlessModel) View() string {
	return zone.Scan(headlessview.RenderApp(&m.ui, m.runtimeView()))
}
