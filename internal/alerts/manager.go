package alerts

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"asa-manager/internal/arklog"
	"asa-manager/internal/logging"
	"asa-manager/internal/runctx"
)

const (
	defaultQueueSize   = 64
	defaultSendTimeout = 5 * time.Second
	defaultVerb        = "ServerChat"
	whiteColor         = "#FFFFFF"
)

// Sender executes a console command on a named server.
type Sender interface {
	Execute(ctx context.Context, server string, command string) (string, error)
}

// Directory is the durable player to character map.
type Directory interface {
	RecordJoin(ctx context.Context, server string, uniqueID string, character string, platform string, seenAt time.Time) error
	CharacterName(uniqueID string) (string, bool)
}

type Options struct {
	QueueSize   int
	SendTimeout time.Duration
	// Verb is the broadcast command prefix, ServerChat by default.
	Verb string
}

type Manager struct {
	opts      Options
	logger    *logging.Logger
	sender    Sender
	directory Directory
	now       func() time.Time

	mu    sync.RWMutex
	rules Rules

	queue chan outbound
	joins chan arklog.Event
}

type outbound struct {
	server  string
	kind    arklog.Kind
	command string
}

func NewManager(opts Options, rules Rules, sender Sender, directory Directory, logger *logging.Logger) *Manager {
	if logger == nil {
		panic("alerts.NewManager: logger must not be nil")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	if opts.Verb == "" {
		opts.Verb = defaultVerb
	}
	return &Manager{
		opts:      opts,
		logger:    logger,
		sender:    sender,
		directory: directory,
		now:       time.Now,
		rules:     rules.Clone(),
		queue:     make(chan outbound, opts.QueueSize),
		joins:     make(chan arklog.Event, opts.QueueSize),
	}
}

func (m *Manager) Rules() Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rules.Clone()
}

// UpdateRules replaces the rule table. Kinds missing from rules fall back to defaults.
func (m *Manager) UpdateRules(rules Rules) {
	next := rules.Clone()
	m.mu.Lock()
	m.rules = next
	m.mu.Unlock()
	m.logger.Info("alert rules updated", logging.Field("rules", len(next)))
}

func (m *Manager) SetRule(kind arklog.Kind, rule Rule) error {
	if !slices.Contains(arklog.Kinds, kind) {
		return fmt.Errorf("unknown alert kind %q", kind)
	}
	if _, _, _, err := parseHexColor(rule.Color); err != nil {
		return err
	}
	m.mu.Lock()
	m.rules[kind] = rule
	m.mu.Unlock()
	return nil
}

func (m *Manager) rule(kind arklog.Kind) (Rule, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, ok := m.rules[kind]
	return rule, ok
}

// ProcessLine matches line against the alert patterns and queues a broadcast
// when the matching rule is enabled. Joins are also queued for the directory.
// It never blocks on the sender or the directory.
func (m *Manager) ProcessLine(server string, line string) {
	now := m.now()
	ev, ok := arklog.Match(line, arklog.AlertPatterns, now)
	if !ok {
		return
	}
	ev.Server = server

	if ev.Kind == arklog.KindJoin {
		m.queueJoin(ev)
	}

	rule, ok := m.rule(ev.Kind)
	if !ok || !rule.Enabled {
		return
	}
	message := Format(rule.Template, ev, m.characterName(ev), now)
	if message == "" {
		return
	}
	wrapped, err := WrapColor(message, rule.Color)
	if err != nil {
		m.logger.Warn("alert color invalid, using white", logging.Field("kind", string(ev.Kind)), logging.Field("error", err))
		wrapped, _ = WrapColor(message, whiteColor)
	}
	m.enqueue(outbound{server: server, kind: ev.Kind, command: m.opts.Verb + " " + wrapped})
}

func (m *Manager) queueJoin(ev arklog.Event) {
	if m.directory == nil || ev.UniqueID == "" {
		return
	}
	select {
	case m.joins <- ev:
	default:
		m.logger.Warn("join queue full, dropping player sighting",
			logging.Field("server", ev.Server),
			logging.Field("player", ev.Name),
		)
	}
}

func (m *Manager) recordJoin(ctx context.Context, ev arklog.Event) {
	recordCtx, cancel := context.WithTimeout(ctx, m.opts.SendTimeout)
	defer cancel()
	if err := m.directory.RecordJoin(recordCtx, ev.Server, ev.UniqueID, ev.Name, ev.Platform, ev.Timestamp); err != nil {
		m.logger.Warn("failed to record player sighting",
			logging.Field("server", ev.Server),
			logging.Field("player", ev.Name),
			logging.Field("error", err),
		)
	}
}

func (m *Manager) characterName(ev arklog.Event) string {
	if m.directory == nil || ev.UniqueID == "" {
		return ""
	}
	name, _ := m.directory.CharacterName(ev.UniqueID)
	return name
}

func (m *Manager) enqueue(item outbound) {
	select {
	case m.queue <- item:
		m.logger.Debug("alert queued", logging.Field("server", item.server), logging.Field("kind", string(item.kind)))
	default:
		m.logger.Warn("alert queue full, dropping alert",
			logging.Field("server", item.server),
			logging.Field("kind", string(item.kind)),
		)
	}
}

// Run drains queued alerts through the sender and queued joins into the
// directory until ctx is done. Failed sends and writes are logged and dropped.
func (m *Manager) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Go(func() {
		for {
			ev, ok := runctx.RecvOrDone(ctx, "join recording", m.logger, m.joins)
			if !ok {
				return
			}
			m.recordJoin(ctx, ev)
		}
	})

	for {
		item, ok := runctx.RecvOrDone(ctx, "alert dispatch", m.logger, m.queue)
		if !ok {
			return ctx.Err()
		}
		m.send(ctx, item)
	}
}

func (m *Manager) send(ctx context.Context, item outbound) {
	if m.sender == nil {
		m.logger.Debug("no alert sender configured", logging.Field("server", item.server))
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, m.opts.SendTimeout)
	defer cancel()
	if _, err := m.sender.Execute(sendCtx, item.server, item.command); err != nil {
		m.logger.Warn("failed to send alert",
			logging.Field("server", item.server),
			logging.Field("kind", string(item.kind)),
			logging.Field("error", err),
		)
		return
	}
	m.logger.Info("alert sent", logging.Field("server", item.server), logging.Field("kind", string(item.kind)))
}
