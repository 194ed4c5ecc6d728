package headless

import (
	"testing"
	"time"

	"asa-manager/internal/presence"
	"asa-manager/internal/storage"
)

func TestAppendLogLinesWithLimit(t *testing.T) {
	got := appendLogLinesWithLimit("", "one\n", 3)
	if got != "one" {
		t.Fatalf("appendLogLinesWithLimit(empty) = %q, want %q", got, "one")
	}
	got = appendLogLinesWithLimit(got, "two\r\nthree\n", 3)
	if got != "one\ntwo\nthree" {
		t.Fatalf("appendLogLinesWithLimit() = %q", got)
	}
	got = appendLogLinesWithLimit(got, "four\n", 3)
	if got != "two\nthree\nfour" {
		t.Fatalf("appendLogLinesWithLimit() over limit = %q, want oldest dropped", got)
	}
	if got := appendLogLinesWithLimit("a", "b", 0); got != "" {
		t.Fatalf("appendLogLinesWithLimit(limit 0) = %q, want empty", got)
	}
}

func TestApplyPlayerHistory(t *testing.T) {
	logged := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	earlier := logged.Add(-2 * time.Hour)
	players := []presence.Entry{
		{Name: "Alpha", UniqueID: "a1", JoinedAt: logged},
		{Name: "Bravo", UniqueID: "b2", JoinedAt: logged},
		{Name: "Charlie", JoinedAt: logged},
	}
	sessions := []storage.Session{
		{Character: "Alpha", JoinedAt: earlier},
		{Character: "Bravo", JoinedAt: logged.Add(time.Minute)},
	}
	visits := map[string]int{"Alpha": 1, "Bravo": 250}

	got, notes := applyPlayerHistory(players, sessions, visits)
	if !got[0].JoinedAt.Equal(earlier) {
		t.Fatalf("Alpha JoinedAt = %v, want session start %v", got[0].JoinedAt, earlier)
	}
	if !got[1].JoinedAt.Equal(logged) {
		t.Fatalf("Bravo JoinedAt = %v, want log time kept", got[1].JoinedAt)
	}
	if !players[0].JoinedAt.Equal(logged) {
		t.Fatalf("input slice modified")
	}
	if notes["Alpha"] != "1 visit" || notes["Bravo"] != "99+ visits" {
		t.Fatalf("notes = %v", notes)
	}
	if _, ok := notes["Charlie"]; ok {
		t.Fatalf("note for player with no history: %q", notes["Charlie"])
	}
}
