package presence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"asa-manager/internal/logging"
)

func testLogger() *logging.Logger {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	return logger
}

func joinLine(name string) string {
	return fmt.Sprintf("[2024.01.15-12.00.00:000][  1]2024.01.15_12.00.00: %s [UniqueNetId:id-%s Platform:Steam] joined this ARK!", name, name)
}

func leaveLine(name string) string {
	return fmt.Sprintf("[2024.01.15-12.30.00:000][  2]2024.01.15_12.30.00: %s [UniqueNetId:id-%s Platform:Steam] left this ARK!", name, name)
}

func writeLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	var content strings.Builder
	for _, line := range lines {
		content.WriteString(line)
		content.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func appendLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	for _, line := range lines {
		if _, err := file.WriteString(line + "\n"); err != nil {
			t.Fatalf("append %s: %v", path, err)
		}
	}
}

func newLogPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "ShooterGame.log")
}

type countCall struct {
	server string
	count  int
}

type recorder struct {
	mu     sync.Mutex
	joins  []string
	leaves []string
	counts []countCall
}

func (r *recorder) PlayerJoined(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joins = append(r.joins, ev.Name)
}

func (r *recorder) PlayerLeft(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves = append(r.leaves, ev.Name)
}

func (r *recorder) CountChanged(server string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, countCall{server: server, count: count})
}

func (r *recorder) countValues() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.counts))
	for i, c := range r.counts {
		out[i] = c.count
	}
	return out
}

func (r *recorder) countsFor(server string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []int{}
	for _, c := range r.counts {
		if c.server == server {
			out = append(out, c.count)
		}
	}
	return out
}

func (r *recorder) joinNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.joins...)
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
