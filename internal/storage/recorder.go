package storage

import (
	"context"
	"time"

	"asa-manager/internal/logging"
	"asa-manager/internal/presence"
)

const recorderTimeout = 5 * time.Second

// SessionRecorder is a presence observer that mirrors joins and leaves into
// the sessions table.
type SessionRecorder struct {
	store  *Store
	logger *logging.Logger
	now    func() time.Time
}

func NewSessionRecorder(store *Store, logger *logging.Logger) *SessionRecorder {
	if logger == nil {
		panic("storage.NewSessionRecorder: logger must not be nil")
	}
	return &SessionRecorder{store: store, logger: logger, now: time.Now}
}

func (r *SessionRecorder) PlayerJoined(ev presence.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()
	if _, err := r.store.OpenSession(ctx, ev.Server, ev.Name, ev.UniqueID, r.stamp(ev.Timestamp)); err != nil {
		r.logger.Warn("failed to open session", logging.Field("server", ev.Server), logging.Field("player", ev.Name), logging.Field("error", err))
	}
}

func (r *SessionRecorder) PlayerLeft(ev presence.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()
	closed, err := r.store.CloseSession(ctx, ev.Server, ev.Name, r.stamp(ev.Timestamp))
	if err != nil {
		r.logger.Warn("failed to close session", logging.Field("server", ev.Server), logging.Field("player", ev.Name), logging.Field("error", err))
		return
	}
	if !closed {
		r.logger.Debug("leave without open session", logging.Field("server", ev.Server), logging.Field("player", ev.Name))
	}
}

func (r *SessionRecorder) CountChanged(server string, count int) {
	if count != 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()
	closed, err := r.store.CloseOpenSessions(ctx, server, r.now())
	if err != nil {
		r.logger.Warn("failed to close open sessions", logging.Field("server", server), logging.Field("error", err))
		return
	}
	if closed > 0 {
		r.logger.Info("closed open sessions", logging.Field("server", server), logging.Field("sessions", closed))
	}
}

func (r *SessionRecorder) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return r.now()
	}
	return t
}
