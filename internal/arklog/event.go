// Package arklog classifies ARK: Survival Ascended server log lines into
// structured events.
package arklog

import "time"

type Kind string

const (
	KindJoin        Kind = "join"
	KindLeave       Kind = "leave"
	KindPlayerDeath Kind = "player_death"
	KindDinoDeath   Kind = "dino_death"
	KindDinoTame    Kind = "dino_tame"
)

// Kinds lists every event kind in alert configuration order.
var Kinds = []Kind{KindJoin, KindLeave, KindPlayerDeath, KindDinoDeath, KindDinoTame}

// Event is one matched log line. Fields a pattern does not capture stay empty.
type Event struct {
	Timestamp time.Time
	Kind      Kind
	Server    string
	Name      string
	UniqueID  string
	Platform  string
	Tribe     string
	Creature  string
	Level     string
	Killer    string
	Raw       string
}
