package arklog

import (
	"regexp"
	"strings"
	"time"
)

// Pattern pairs a line expression with the extractor that fills an Event.
type Pattern struct {
	Kind    Kind
	expr    *regexp.Regexp
	extract func(match []string, event *Event)
}

var (
	// [2024.01.15-12.34.56:789][ 42]2024.01.15_12.34.56: body
	linePrefixRegex = regexp.MustCompile(`^(?:\[(\d{4}\.\d{2}\.\d{2}-\d{2}\.\d{2}\.\d{2})(?::\d+)?\]\[\s*\d+\])?\s*(?:(\d{4}\.\d{2}\.\d{2}_\d{2}\.\d{2}\.\d{2}|\d{4}\.\d{2}\.\d{2}-\d{2}\.\d{2}\.\d{2}|\d{2}:\d{2}:\d{2}):\s*)?`)

	// Tribe Raiders, ID 1234567: Day 12, 08:47:05: <RichColor Color="1, 0, 0, 1">entry</>)
	tribeLogRegex  = regexp.MustCompile(`^Tribe (.+?), ID \d+: Day \d+, \d{2}:\d{2}:\d{2}:\s*(.*)$`)
	richColorRegex = regexp.MustCompile(`^<RichColor[^>]*>(.*?)(?:</>\)?)?$`)

	joinRegex        = regexp.MustCompile(`^(.+?)\s*\[UniqueNetId:\s*([^\s\]]+)\s+Platform:\s*([^\]]*)\]\s+joined this ARK!?$`)
	leaveRegex       = regexp.MustCompile(`^(.+?)\s*\[UniqueNetId:\s*([^\s\]]+)\s+Platform:\s*([^\]]*)\]\s+left this ARK!?$`)
	dinoDeathRegex   = regexp.MustCompile(`^(?:(.+?) Tribe's |Your )(.+?) - Lvl (\d+) \((.+?)\) was killed(?: by (.+?))?!?$`)
	playerDeathRegex = regexp.MustCompile(`^(?:Tribemember )?(.+?) - Lvl (\d+)(?: \((.+?)\))? (?:was killed(?: by (.+?))?|died)!?$`)
	tameRegex        = regexp.MustCompile(`^(.+?)(?: of Tribe (.+?))? Tamed an? (.+?) - Lvl (\d+) \((.+?)\)!?$`)
)

var (
	joinPattern = Pattern{Kind: KindJoin, expr: joinRegex, extract: func(m []string, e *Event) {
		e.Name, e.UniqueID, e.Platform = clean(m[1]), clean(m[2]), clean(m[3])
	}}
	leavePattern = Pattern{Kind: KindLeave, expr: leaveRegex, extract: func(m []string, e *Event) {
		e.Name, e.UniqueID, e.Platform = clean(m[1]), clean(m[2]), clean(m[3])
	}}
	dinoDeathPattern = Pattern{Kind: KindDinoDeath, expr: dinoDeathRegex, extract: func(m []string, e *Event) {
		e.Tribe, e.Name, e.Level, e.Creature, e.Killer = clean(m[1]), clean(m[2]), m[3], clean(m[4]), clean(m[5])
	}}
	playerDeathPattern = Pattern{Kind: KindPlayerDeath, expr: playerDeathRegex, extract: func(m []string, e *Event) {
		e.Name, e.Level, e.Tribe, e.Killer = clean(m[1]), m[2], clean(m[3]), clean(m[4])
	}}
	tamePattern = Pattern{Kind: KindDinoTame, expr: tameRegex, extract: func(m []string, e *Event) {
		e.Name, e.Tribe, e.Level, e.Creature = clean(m[1]), clean(m[2]), m[4], clean(m[5])
	}}
)

// PresencePatterns is the join/leave set used for player presence. Join is
// tried first; the two never match the same line.
var PresencePatterns = []Pattern{joinPattern, leavePattern}

// AlertPatterns is the wider set used for chat alerts, in priority order.
// Dino deaths go before player deaths because both end in "was killed".
var AlertPatterns = []Pattern{joinPattern, leavePattern, dinoDeathPattern, playerDeathPattern, tamePattern}

// Match runs patterns against line in order and returns the first hit.
// A line without a parseable timestamp is stamped with now.
func Match(line string, patterns []Pattern, now time.Time) (Event, bool) {
	stamp, body := splitPrefix(line)
	tribe, body := splitTribeLog(body)
	for _, p := range patterns {
		match := p.expr.FindStringSubmatch(body)
		if match == nil {
			continue
		}
		event := Event{Kind: p.Kind, Raw: line, Timestamp: ParseTimestamp(stamp, now)}
		p.extract(match, &event)
		if event.Name == "" || strings.ContainsAny(event.Name, "<>") {
			return Event{}, false
		}
		if event.Tribe == "" {
			event.Tribe = tribe
		}
		return event, true
	}
	return Event{}, false
}

// MatchPresence is Match over PresencePatterns.
func MatchPresence(line string, now time.Time) (Event, bool) {
	return Match(line, PresencePatterns, now)
}

func splitPrefix(line string) (string, string) {
	line = strings.TrimSpace(line)
	loc := linePrefixRegex.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", line
	}
	body := strings.TrimSpace(line[loc[1]:])
	// prefer the game timestamp; fall back to the engine bracket stamp
	if loc[4] >= 0 {
		return line[loc[4]:loc[5]], body
	}
	if loc[2] >= 0 {
		return line[loc[2]:loc[3]], body
	}
	return "", body
}

// splitTribeLog strips the tribe log header and its colour markup, returning
// the tribe name and the bare entry. Other lines pass through unchanged.
func splitTribeLog(body string) (string, string) {
	m := tribeLogRegex.FindStringSubmatch(body)
	if m == nil {
		return "", body
	}
	entry := strings.TrimSpace(m[2])
	if rich := richColorRegex.FindStringSubmatch(entry); rich != nil {
		entry = strings.TrimSpace(rich[1])
	}
	return clean(m[1]), entry
}

func clean(s string) string {
	return strings.TrimSpace(s)
}
