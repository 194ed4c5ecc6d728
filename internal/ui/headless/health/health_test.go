package health

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"asa-manager/internal/presence"
)

func TestCompute_ClassifiesServerHealthByLogAge(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	write := func(name string, age time.Duration) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		ts := now.Add(-age)
		if err := os.Chtimes(path, ts, ts); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
		return path
	}

	servers := []presence.ServerInfo{
		{Name: "Island", LogPath: write("island.log", time.Minute), Enabled: true, Online: 3},
		{Name: "Scorched", LogPath: write("scorched.log", 10*time.Minute), Enabled: true},
		{Name: "Center", LogPath: write("center.log", 2*time.Hour), Enabled: true},
		{Name: "Ragnarok", LogPath: filepath.Join(dir, "missing.log"), Enabled: true},
		{Name: "Aberration", LogPath: write("aberration.log", time.Minute), Enabled: false},
	}

	rows, msg := Compute(servers, now)
	if msg != "" {
		t.Fatalf("Compute() message = %q, want empty", msg)
	}
	if len(rows) != len(servers) {
		t.Fatalf("rows len = %d, want %d", len(rows), len(servers))
	}

	kinds := map[string]Kind{}
	for _, r := range rows {
		kinds[r.Name] = r.Kind
	}
	if kinds["Island"] != Active || kinds["Scorched"] != Warn || kinds["Center"] != Stale ||
		kinds["Ragnarok"] != Missing || kinds["Aberration"] != Disabled {
		t.Fatalf("unexpected kinds: %#v", kinds)
	}
	if rows[0].Online != 3 {
		t.Fatalf("rows[0].Online = %d, want 3", rows[0].Online)
	}
}

func TestCompute_ReportsEmptyServerList(t *testing.T) {
	rows, msg := Compute(nil, time.Now())
	if len(rows) != 0 || !strings.Contains(msg, "No servers") {
		t.Fatalf("Compute(nil) rows=%d msg=%q", len(rows), msg)
	}
}
