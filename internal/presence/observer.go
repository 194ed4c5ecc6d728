package presence

import (
	"fmt"
	"sync"

	"asa-manager/internal/logging"
)

// Observer receives presence notifications on the polling goroutine. Work that
// must happen elsewhere (a UI loop, a database) is the observer's concern.
type Observer interface {
	PlayerJoined(Event)
	PlayerLeft(Event)
	CountChanged(server string, count int)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnJoin  func(Event)
	OnLeave func(Event)
	OnCount func(server string, count int)
}

func (f ObserverFuncs) PlayerJoined(ev Event) {
	if f.OnJoin != nil {
		f.OnJoin(ev)
	}
}

func (f ObserverFuncs) PlayerLeft(ev Event) {
	if f.OnLeave != nil {
		f.OnLeave(ev)
	}
}

func (f ObserverFuncs) CountChanged(server string, count int) {
	if f.OnCount != nil {
		f.OnCount(server, count)
	}
}

type observers struct {
	mu   sync.Mutex
	next int
	list []observerSlot
}

type observerSlot struct {
	id       int
	observer Observer
}

// Subscribe registers o and returns a function that removes it. Observers are
// called in registration order.
func (m *Monitor) Subscribe(o Observer) func() {
	if o == nil {
		return func() {}
	}
	m.obs.mu.Lock()
	id := m.obs.next
	m.obs.next++
	m.obs.list = append(m.obs.list, observerSlot{id: id, observer: o})
	m.obs.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.obs.mu.Lock()
			defer m.obs.mu.Unlock()
			for i, slot := range m.obs.list {
				if slot.id == id {
					m.obs.list = append(m.obs.list[:i:i], m.obs.list[i+1:]...)
					return
				}
			}
		})
	}
}

func (m *Monitor) snapshotObservers() []Observer {
	m.obs.mu.Lock()
	defer m.obs.mu.Unlock()
	out := make([]Observer, len(m.obs.list))
	for i, slot := range m.obs.list {
		out[i] = slot.observer
	}
	return out
}

func (m *Monitor) notifyJoin(ev Event) {
	m.dispatch("join", func(o Observer) { o.PlayerJoined(ev) })
}

func (m *Monitor) notifyLeave(ev Event) {
	m.dispatch("leave", func(o Observer) { o.PlayerLeft(ev) })
}

func (m *Monitor) notifyCount(server string, count int) {
	m.dispatch("count", func(o Observer) { o.CountChanged(server, count) })
}

func (m *Monitor) dispatch(kind string, call func(Observer)) {
	for _, o := range m.snapshotObservers() {
		m.safeCall(kind, o, call)
	}
}

func (m *Monitor) safeCall(kind string, o Observer, call func(Observer)) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("observer panicked",
				logging.Field("notification", kind),
				logging.Field("panic", fmt.Sprint(r)),
			)
		}
	}()
	call(o)
}
