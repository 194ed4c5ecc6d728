// Package storage persists the player to character map and play sessions in
// a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no character is stored for a unique id.
var ErrNotFound = errors.New("character not found")

// formatTimestamp stores times as UTC ISO8601 so the driver scans them back as UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

type Character struct {
	UniqueID   string
	Name       string
	Platform   string
	LastServer string
	LastSeenAt time.Time
}

type Sighting struct {
	Server   string
	UniqueID string
	Name     string
	Platform string
	SeenAt   time.Time
}

type Session struct {
	ID        string
	Server    string
	Character string
	UniqueID  string
	JoinedAt  time.Time
	LeftAt    *time.Time
}

type Store struct {
	db *sql.DB

	mu    sync.RWMutex
	names map[string]string
}

// Open opens or creates the database at path and loads the character cache.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{db: db, names: map[string]string{}}
	if err := s.loadNames(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) loadNames(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT unique_id, character_name FROM characters`)
	if err != nil {
		return fmt.Errorf("loading characters: %w", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("loading characters: %w", err)
		}
		s.names[id] = name
	}
	return rows.Err()
}

// RecordJoin appends a sighting and updates the latest character for uniqueID.
func (s *Store) RecordJoin(ctx context.Context, server string, uniqueID string, character string, platform string, seenAt time.Time) error {
	if seenAt.IsZero() {
		seenAt = time.Now()
	}
	stamp := formatTimestamp(seenAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sightings (server, unique_id, character_name, platform, seen_at)
		VALUES (?, ?, ?, ?, ?)
	`, server, uniqueID, character, platform, stamp); err != nil {
		return fmt.Errorf("inserting sighting: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO characters (unique_id, character_name, platform, last_server, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(unique_id) DO UPDATE SET
			character_name = excluded.character_name,
			platform = excluded.platform,
			last_server = excluded.last_server,
			last_seen_at = excluded.last_seen_at
	`, uniqueID, character, platform, server, stamp); err != nil {
		return fmt.Errorf("updating character: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.mu.Lock()
	s.names[uniqueID] = character
	s.mu.Unlock()
	return nil
}

// CharacterName returns the last character name seen for uniqueID.
func (s *Store) CharacterName(uniqueID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[uniqueID]
	return name, ok
}

func (s *Store) Character(ctx context.Context, uniqueID string) (*Character, error) {
	var c Character
	err := s.db.QueryRowContext(ctx, `
		SELECT unique_id, character_name, platform, last_server, last_seen_at
		FROM characters WHERE unique_id = ?
	`, uniqueID).Scan(&c.UniqueID, &c.Name, &c.Platform, &c.LastServer, &c.LastSeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", uniqueID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Sightings returns the newest sightings of uniqueID first.
func (s *Store) Sightings(ctx context.Context, uniqueID string, limit int) ([]Sighting, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT server, unique_id, character_name, platform, seen_at
		FROM sightings WHERE unique_id = ?
		ORDER BY seen_at DESC, id DESC LIMIT ?
	`, uniqueID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sighting
	for rows.Next() {
		var sg Sighting
		if err := rows.Scan(&sg.Server, &sg.UniqueID, &sg.Name, &sg.Platform, &sg.SeenAt); err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	return out, rows.Err()
}

// OpenSession starts a session, closing any session still open for the same
// character on the same server.
func (s *Store) OpenSession(ctx context.Context, server string, character string, uniqueID string, joinedAt time.Time) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions SET left_at = ?
		WHERE server = ? AND character_name = ? AND left_at IS NULL
	`, formatTimestamp(joinedAt), server, character); err != nil {
		return "", fmt.Errorf("closing previous session: %w", err)
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, server, character_name, unique_id, joined_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, server, character, uniqueID, formatTimestamp(joinedAt)); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// CloseSession ends the open session of character on server. It reports
// whether a session was open.
func (s *Store) CloseSession(ctx context.Context, server string, character string, leftAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET left_at = ?
		WHERE server = ? AND character_name = ? AND left_at IS NULL
	`, formatTimestamp(leftAt), server, character)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CloseOpenSessions ends every open session on server.
func (s *Store) CloseOpenSessions(ctx context.Context, server string, leftAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET left_at = ? WHERE server = ? AND left_at IS NULL
	`, formatTimestamp(leftAt), server)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) ActiveSessions(ctx context.Context, server string) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, server, character_name, unique_id, joined_at, left_at
		FROM sessions WHERE server = ? AND left_at IS NULL
		ORDER BY joined_at, character_name
	`, server)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var leftAt sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.Server, &sess.Character, &sess.UniqueID, &sess.JoinedAt, &leftAt); err != nil {
			return nil, err
		}
		if leftAt.Valid {
			sess.LeftAt = &leftAt.Time
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
