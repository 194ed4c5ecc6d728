package arklog

import (
	"strings"
	"time"
)

const (
	layoutUnderscore = "2006.01.02_15.04.05"
	layoutTimeOnly   = "15:04:05"
	layoutDash       = "2006.01.02-15.04.05"
)

// ParseTimestamp reads the three timestamp shapes ARK writes, in order:
// full date with underscore, time only (taken as today in now's location),
// full date with dash. Anything else yields now.
func ParseTimestamp(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return now
	}
	loc := now.Location()
	if ts, err := time.ParseInLocation(layoutUnderscore, value, loc); err == nil {
		return ts
	}
	if clock, err := time.ParseInLocation(layoutTimeOnly, value, loc); err == nil {
		y, m, d := now.Date()
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, loc)
	}
	if i := strings.IndexByte(value, ':'); i > 0 && strings.Count(value, "-") == 1 {
		value = value[:i]
	}
	if ts, err := time.ParseInLocation(layoutDash, value, loc); err == nil {
		return ts
	}
	return now
}
