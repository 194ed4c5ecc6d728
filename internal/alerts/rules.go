// Package alerts turns notable game log lines into in-game chat broadcasts.
package alerts

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"asa-manager/internal/arklog"
)

// Rule controls whether and how one kind of event is announced.
type Rule struct {
	Enabled  bool   `json:"enabled"`
	Template string `json:"template"`
	Color    string `json:"color"`
}

type Rules map[arklog.Kind]Rule

func DefaultRules() Rules {
	return Rules{
		arklog.KindJoin:        {Enabled: true, Template: "{player} joined the server", Color: "#00FF00"},
		arklog.KindLeave:       {Enabled: true, Template: "{player} left the server", Color: "#FFA500"},
		arklog.KindPlayerDeath: {Enabled: true, Template: "{player} (Lvl {level}) died", Color: "#FF0000"},
		arklog.KindDinoDeath:   {Enabled: false, Template: "{tribe} lost {player}, a level {level} {creature}", Color: "#FF4500"},
		arklog.KindDinoTame:    {Enabled: true, Template: "{player} tamed a level {level} {creature}", Color: "#00BFFF"},
	}
}

// Clone returns a copy with defaults filled in for kinds missing from r.
func (r Rules) Clone() Rules {
	out := DefaultRules()
	for kind, rule := range r {
		out[kind] = rule
	}
	return out
}

// Format fills template placeholders from ev. Unknown placeholders are kept.
func Format(template string, ev arklog.Event, character string, now time.Time) string {
	if character == "" {
		character = ev.Name
	}
	stamp := ev.Timestamp
	if stamp.IsZero() {
		stamp = now
	}
	replacer := strings.NewReplacer(
		"{player}", ev.Name,
		"{character}", character,
		"{unique_id}", ev.UniqueID,
		"{platform}", ev.Platform,
		"{tribe}", ev.Tribe,
		"{creature}", ev.Creature,
		"{level}", ev.Level,
		"{killer}", ev.Killer,
		"{server}", ev.Server,
		"{time}", stamp.Format("15:04:05"),
	)
	return strings.TrimSpace(replacer.Replace(template))
}

// WrapColor wraps msg in the RichColor markup the game chat understands.
// hex is #RRGGBB; an invalid value is an error.
func WrapColor(msg string, hex string) (string, error) {
	r, g, b, err := parseHexColor(hex)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<RichColor Color="%s, %s, %s, 1">%s</>`, channel(r), channel(g), channel(b), msg), nil
}

func parseHexColor(hex string) (uint8, uint8, uint8, error) {
	value := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(value) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid color %q: want #RRGGBB", hex)
	}
	parsed, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return uint8(parsed >> 16), uint8(parsed >> 8), uint8(parsed), nil
}

func channel(v uint8) string {
	scaled := math.Round(float64(v)/255*100) / 100
	return strconv.FormatFloat(scaled, 'f', -1, 64)
}
