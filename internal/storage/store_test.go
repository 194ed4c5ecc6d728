package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"asa-manager/internal/logging"
	"asa-manager/internal/presence"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "asa-manager.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestStore_RecordJoinUpdatesCharacterAndCache(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()
	first := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	if err := store.RecordJoin(ctx, "Island", "abc", "Rex Hunter", "Steam", first); err != nil {
		t.Fatalf("RecordJoin() error = %v", err)
	}
	if err := store.RecordJoin(ctx, "Scorched", "abc", "Dune Walker", "Steam", first.Add(time.Hour)); err != nil {
		t.Fatalf("RecordJoin() error = %v", err)
	}

	if name, ok := store.CharacterName("abc"); !ok || name != "Dune Walker" {
		t.Fatalf("CharacterName() = %q, %v; want Dune Walker, true", name, ok)
	}
	char, err := store.Character(ctx, "abc")
	if err != nil {
		t.Fatalf("Character() error = %v", err)
	}
	if char.LastServer != "Scorched" || !char.LastSeenAt.Equal(first.Add(time.Hour)) {
		t.Fatalf("Character() = %+v", char)
	}

	sightings, err := store.Sightings(ctx, "abc", 0)
	if err != nil {
		t.Fatalf("Sightings() error = %v", err)
	}
	if len(sightings) != 2 || sightings[0].Name != "Dune Walker" || sightings[1].Name != "Rex Hunter" {
		t.Fatalf("Sightings() = %+v", sightings)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()
	if name, ok := reopened.CharacterName("abc"); !ok || name != "Dune Walker" {
		t.Fatalf("CharacterName() after reopen = %q, %v", name, ok)
	}
}

func TestStore_SessionsLifecycle(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	if _, err := store.OpenSession(ctx, "Island", "A", "id-a", at); err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if _, err := store.OpenSession(ctx, "Island", "A", "id-a", at.Add(time.Minute)); err != nil {
		t.Fatalf("OpenSession() duplicate error = %v", err)
	}
	if _, err := store.OpenSession(ctx, "Island", "B", "id-b", at); err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}

	active, err := store.ActiveSessions(ctx, "Island")
	if err != nil {
		t.Fatalf("ActiveSessions() error = %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("ActiveSessions() = %d sessions, want 2", len(active))
	}

	closed, err := store.CloseSession(ctx, "Island", "A", at.Add(time.Hour))
	if err != nil || !closed {
		t.Fatalf("CloseSession() = %v, %v; want true, nil", closed, err)
	}
	closed, err = store.CloseSession(ctx, "Island", "Ghost", at)
	if err != nil || closed {
		t.Fatalf("CloseSession(unknown) = %v, %v; want false, nil", closed, err)
	}

	n, err := store.CloseOpenSessions(ctx, "Island", at.Add(2*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("CloseOpenSessions() = %d, %v; want 1, nil", n, err)
	}
}

func TestSessionRecorder_FollowsPresence(t *testing.T) {
	store, _ := openTestStore(t)
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	recorder := NewSessionRecorder(store, logger)
	at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	recorder.PlayerJoined(presence.Event{Server: "Island", Name: "A", UniqueID: "id-a", Timestamp: at})
	recorder.PlayerJoined(presence.Event{Server: "Island", Name: "B", UniqueID: "id-b", Timestamp: at})
	recorder.PlayerLeft(presence.Event{Server: "Island", Name: "A", Timestamp: at.Add(time.Minute)})
	recorder.CountChanged("Island", 1)

	active, err := store.ActiveSessions(context.Background(), "Island")
	if err != nil {
		t.Fatalf("ActiveSessions() error = %v", err)
	}
	if len(active) != 1 || active[0].Character != "B" {
		t.Fatalf("ActiveSessions() = %+v, want only B", active)
	}

	recorder.CountChanged("Island", 0)
	active, err = store.ActiveSessions(context.Background(), "Island")
	if err != nil {
		t.Fatalf("ActiveSessions() error = %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("ActiveSessions() after reset = %+v, want none", active)
	}
}

func TestStore_CharacterUnknownIsNotFound(t *testing.T) {
	store, _ := openTestStore(t)
	if _, err := store.Character(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Character(unknown) error = %v, want ErrNotFound", err)
	}
}
