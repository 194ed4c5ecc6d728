// Package presence tails ARK server logs and keeps a live set of the players
// currently connected to each registered server.
package presence

import (
	"errors"
	"time"

	"asa-manager/internal/logging"
)

// ErrUnknownServer is returned when a call names a server that is not registered.
var ErrUnknownServer = errors.New("unknown server")

// Entry is one player believed online on one server. Name is the dedup key.
type Entry struct {
	Name     string
	UniqueID string
	Platform string
	JoinedAt time.Time
	Server   string
}

// Event is a join or leave observed while tailing.
type Event struct {
	Server    string
	Name      string
	UniqueID  string
	Platform  string
	Timestamp time.Time
	Raw       string
}

// ServerInfo is a point-in-time view of one registered source.
type ServerInfo struct {
	Name          string
	LogPath       string
	Enabled       bool
	Reconstructed bool
	Online        int
	Offset        int64
}

// Options tunes the polling loop. Zero values fall back to defaults.
type Options struct {
	PollInterval time.Duration
	StopTimeout  time.Duration
	// Watch adds an fsnotify wake-up so appended lines are picked up between ticks.
	Watch bool
}

// LineSink receives every tailed line before presence handling.
type LineSink interface {
	ProcessLine(server string, line string)
}

// Monitor tails one log per registered server and tracks who is online.
type Monitor struct {
	opts   Options
	logger *logging.Logger
	sink   LineSink
	now    func() time.Time

	sources registry

	obs observers

	run runState
}

type source struct {
	name           string
	path           string
	enabled        bool
	reconstructed  bool
	reconstructing bool // one goroutine owns the initial full read
	tailer         *Tailer
	presence       map[string]Entry
}

// Tailer reads the whole lines appended to one file since the last read.
type Tailer struct {
	Path   string
	Offset int64

	modTime time.Time
	size    int64
}
