package presence

import (
	"time"

	"asa-manager/internal/arklog"
)

type lastSeen struct {
	join  int
	leave int
	entry Entry
}

// Reconstruct computes who is online from a full log history. A name is
// present when it has a join and its last join comes after its last leave.
func Reconstruct(server string, lines []string, now time.Time) map[string]Entry {
	seen := map[string]*lastSeen{}
	for i, line := range lines {
		ev, ok := arklog.MatchPresence(line, now)
		if !ok {
			continue
		}
		state, exists := seen[ev.Name]
		if !exists {
			state = &lastSeen{join: -1, leave: -1}
			seen[ev.Name] = state
		}
		switch ev.Kind {
		case arklog.KindJoin:
			state.join = i
			state.entry = entryFromEvent(server, ev)
		case arklog.KindLeave:
			state.leave = i
		}
	}

	present := make(map[string]Entry, len(seen))
	for name, state := range seen {
		if state.join >= 0 && state.join > state.leave {
			present[name] = state.entry
		}
	}
	return present
}

func entryFromEvent(server string, ev arklog.Event) Entry {
	return Entry{
		Name:     ev.Name,
		UniqueID: ev.UniqueID,
		Platform: ev.Platform,
		JoinedAt: ev.Timestamp,
		Server:   server,
	}
}

func presenceEvent(server string, ev arklog.Event) Event {
	return Event{
		Server:    server,
		Name:      ev.Name,
		UniqueID:  ev.UniqueID,
		Platform:  ev.Platform,
		Timestamp: ev.Timestamp,
		Raw:       ev.Raw,
	}
}
