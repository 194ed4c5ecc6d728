package health

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"asa-manager/internal/presence"
)

const RefreshRate = 10 * time.Second

const (
	warnAfter  = 5 * time.Minute
	staleAfter = 30 * time.Minute
)

type Kind int

const (
	Missing Kind = iota
	Active
	Warn
	Stale
	Disabled
)

// Row describes how fresh one server's log file is.
type Row struct {
	Name    string
	Kind    Kind
	Reason  string
	Enabled bool
	Online  int
}

func Compute(servers []presence.ServerInfo, now time.Time) ([]Row, string) {
	rows := make([]Row, 0, len(servers))
	if len(servers) == 0 {
		return rows, "No servers registered."
	}

	for _, srv := range servers {
		row := Row{
			Name:    strings.TrimSpace(srv.Name),
			Kind:    Missing,
			Reason:  "Log file not found.",
			Enabled: srv.Enabled,
			Online:  srv.Online,
		}
		stat, err := os.Stat(srv.LogPath)
		if err == nil {
			age := now.Sub(stat.ModTime())
			fileName := filepath.Base(srv.LogPath)
			switch {
			case age <= warnAfter:
				row.Kind = Active
				row.Reason = fmt.Sprintf("%s updated %s ago.", fileName, age.Round(time.Second))
			case age <= staleAfter:
				row.Kind = Warn
				row.Reason = fmt.Sprintf("%s has no updates for %s.", fileName, age.Round(time.Second))
			default:
				row.Kind = Stale
				row.Reason = fmt.Sprintf("%s has no updates for %s.", fileName, age.Round(time.Second))
			}
		}
		if !srv.Enabled {
			row.Kind = Disabled
			row.Reason = "Monitoring disabled."
		}
		rows = append(rows, row)
	}

	return rows, ""
}
