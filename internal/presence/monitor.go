package presence

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"asa-manager/internal/arklog"
	"asa-manager/internal/logging"
)

const (
	defaultPollInterval = 1 * time.Second
	defaultStopTimeout  = 5 * time.Second
)

type registry struct {
	mu     sync.Mutex
	byName map[string]*source
}

type runState struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewMonitor(opts Options, logger *logging.Logger, sink LineSink) *Monitor {
	if logger == nil {
		panic("presence.NewMonitor: logger must not be nil")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	return &Monitor{
		opts:    opts,
		logger:  logger,
		sink:    sink,
		now:     time.Now,
		sources: registry{byName: map[string]*source{}},
	}
}

// AddServer registers a log source, replacing any source with the same name.
// An enabled source is reconstructed before AddServer returns.
func (m *Monitor) AddServer(name string, logPath string, enabled bool) error {
	name = strings.TrimSpace(name)
	logPath = strings.TrimSpace(logPath)
	if name == "" {
		return fmt.Errorf("server name is required")
	}
	if logPath == "" {
		return fmt.Errorf("log path is required for server %q", name)
	}

	src := &source{
		name:           name,
		path:           logPath,
		enabled:        enabled,
		reconstructing: enabled,
		tailer:         NewTailer(logPath),
		presence:       map[string]Entry{},
	}
	m.sources.mu.Lock()
	_, replaced := m.sources.byName[name]
	m.sources.byName[name] = src
	m.sources.mu.Unlock()

	m.logger.Info("registered server log",
		logging.Field("server", name),
		logging.Field("path", logPath),
		logging.Field("enabled", enabled),
		logging.Field("replaced", replaced),
	)
	if enabled {
		m.reconstruct(src)
	}
	return nil
}

func (m *Monitor) RemoveServer(name string) error {
	m.sources.mu.Lock()
	defer m.sources.mu.Unlock()
	if _, ok := m.sources.byName[name]; !ok {
		return fmt.Errorf("remove %q: %w", name, ErrUnknownServer)
	}
	delete(m.sources.byName, name)
	m.logger.Info("removed server log", logging.Field("server", name))
	return nil
}

// EnableServer toggles polling for a source. Presence is kept while disabled,
// and re-enabling a reconstructed source resumes from its stored offset.
func (m *Monitor) EnableServer(name string, enabled bool) error {
	m.sources.mu.Lock()
	src, ok := m.sources.byName[name]
	if !ok {
		m.sources.mu.Unlock()
		return fmt.Errorf("enable %q: %w", name, ErrUnknownServer)
	}
	changed := src.enabled != enabled
	src.enabled = enabled
	m.sources.mu.Unlock()

	if changed {
		m.logger.Info("server monitoring toggled", logging.Field("server", name), logging.Field("enabled", enabled))
	}
	return nil
}

// ResetServerPresence forgets everyone online on a server, typically after the
// game process restarted.
func (m *Monitor) ResetServerPresence(name string) error {
	m.sources.mu.Lock()
	src, ok := m.sources.byName[name]
	if !ok {
		m.sources.mu.Unlock()
		return fmt.Errorf("reset %q: %w", name, ErrUnknownServer)
	}
	cleared := len(src.presence)
	src.presence = map[string]Entry{}
	m.sources.mu.Unlock()

	m.logger.Info("server presence reset", logging.Field("server", name), logging.Field("cleared", cleared))
	m.notifyCount(name, 0)
	return nil
}

// Start launches the poll loop. Enabled sources not yet reconstructed are
// reconstructed first. Starting a running monitor does nothing.
func (m *Monitor) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.IsRunning() {
		return nil
	}
	for _, src := range m.pendingReconstruction() {
		m.reconstruct(src)
	}

	m.run.mu.Lock()
	defer m.run.mu.Unlock()
	if m.run.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.run.cancel = cancel
	m.run.done = done

	var watcher *fsnotify.Watcher
	if m.opts.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			m.logger.Warn("file watcher unavailable, polling only", logging.Field("error", err))
		} else {
			watcher = w
		}
	}

	go func() {
		defer close(done)
		m.loop(runCtx, watcher)
	}()
	m.logger.Info("player monitor started",
		logging.Field("poll_interval", m.opts.PollInterval.String()),
		logging.Field("servers", m.enabledCount()),
		logging.Field("watch", watcher != nil),
	)
	return nil
}

// Stop cancels the poll loop and waits up to StopTimeout for it to exit.
// An iteration already in progress is allowed to finish.
func (m *Monitor) Stop() {
	m.run.mu.Lock()
	cancel := m.run.cancel
	done := m.run.done
	m.run.cancel = nil
	m.run.done = nil
	m.run.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()

	timer := time.NewTimer(m.opts.StopTimeout)
	defer timer.Stop()
	select {
	case <-done:
		m.logger.Info("player monitor stopped")
	case <-timer.C:
		m.logger.Warn("player monitor did not stop in time", logging.Field("timeout", m.opts.StopTimeout.String()))
	}
}

func (m *Monitor) IsRunning() bool {
	m.run.mu.Lock()
	defer m.run.mu.Unlock()
	return m.run.cancel != nil
}

func (m *Monitor) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	watched := map[string]struct{}{}
	if watcher != nil {
		defer watcher.Close()
		events = watcher.Events
		errs = watcher.Errors
		m.syncWatches(watcher, watched)
	}

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("stopping player monitor: context canceled")
			return
		case <-ticker.C:
			m.pollAll()
			if watcher != nil {
				m.syncWatches(watcher, watched)
			}
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && m.isSourcePath(event.Name) {
				m.logger.Debugf("fsnotify event: op=%s path=%s", event.Op.String(), event.Name)
				m.pollAll()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			m.logger.Warn("watcher error", logging.Field("error", err))
		}
	}
}

// syncWatches keeps the watcher on the directories of registered logs. Log
// files are rewritten in place or recreated, so directories are watched.
func (m *Monitor) syncWatches(watcher *fsnotify.Watcher, watched map[string]struct{}) {
	desired := map[string]struct{}{}
	m.sources.mu.Lock()
	for _, src := range m.sources.byName {
		desired[filepath.Dir(filepath.Clean(src.path))] = struct{}{}
	}
	m.sources.mu.Unlock()

	for dir := range desired {
		if _, ok := watched[dir]; ok {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			m.logger.Debugf("failed to watch directory %s: %v", dir, err)
			continue
		}
		watched[dir] = struct{}{}
	}
	for dir := range watched {
		if _, ok := desired[dir]; ok {
			continue
		}
		_ = watcher.Remove(dir)
		delete(watched, dir)
	}
}

func (m *Monitor) isSourcePath(path string) bool {
	clean := filepath.Clean(path)
	m.sources.mu.Lock()
	defer m.sources.mu.Unlock()
	for _, src := range m.sources.byName {
		if filepath.Clean(src.path) == clean {
			return true
		}
	}
	return false
}

// pollAll runs one pass over every enabled source, in name order.
func (m *Monitor) pollAll() {
	for _, name := range m.enabledNames() {
		m.pollSource(name)
	}
}

func (m *Monitor) pollSource(name string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic while polling server log", logging.Field("server", name), logging.Field("panic", fmt.Sprint(r)))
		}
	}()

	m.sources.mu.Lock()
	src, ok := m.sources.byName[name]
	if !ok || !src.enabled {
		m.sources.mu.Unlock()
		return
	}
	if !src.reconstructed {
		claimed := !src.reconstructing
		src.reconstructing = true
		m.sources.mu.Unlock()
		if claimed {
			m.reconstruct(src)
		}
		return
	}
	lines, reset, err := src.tailer.Poll()
	offset := src.tailer.Offset
	m.sources.mu.Unlock()

	if reset {
		m.logger.Warn("log file shrank, reading from start", logging.Field("server", name), logging.Field("path", src.path))
	}
	if err != nil {
		m.logger.Warn("failed to read server log", logging.Field("server", name), logging.Field("path", src.path), logging.Field("error", err))
		return
	}
	if len(lines) == 0 {
		return
	}
	m.logger.Debug("read new log lines", logging.Field("server", name), logging.Field("lines", len(lines)), logging.Field("offset", offset))

	for _, line := range lines {
		if !m.handleLine(src, line) {
			return
		}
	}
}

// handleLine feeds one line to the sink and applies join/leave. It returns
// false once the source has been removed or replaced.
func (m *Monitor) handleLine(src *source, line string) bool {
	m.feedSink(src.name, line)

	ev, ok := arklog.MatchPresence(line, m.now())
	if !ok {
		return true
	}

	m.sources.mu.Lock()
	if m.sources.byName[src.name] != src {
		m.sources.mu.Unlock()
		return false
	}
	switch ev.Kind {
	case arklog.KindJoin:
		src.presence[ev.Name] = entryFromEvent(src.name, ev)
	case arklog.KindLeave:
		delete(src.presence, ev.Name)
	}
	count := len(src.presence)
	m.sources.mu.Unlock()

	event := presenceEvent(src.name, ev)
	if ev.Kind == arklog.KindJoin {
		m.logger.Info("player joined", logging.Field("server", src.name), logging.Field("player", ev.Name), logging.Field("online", count))
		m.notifyJoin(event)
	} else {
		m.logger.Info("player left", logging.Field("server", src.name), logging.Field("player", ev.Name), logging.Field("online", count))
		m.notifyLeave(event)
	}
	m.notifyCount(src.name, count)
	return true
}

func (m *Monitor) feedSink(server string, line string) {
	if m.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic in log line sink", logging.Field("server", server), logging.Field("panic", fmt.Sprint(r)))
		}
	}()
	m.sink.ProcessLine(server, line)
}

// reconstruct rebuilds presence for src from its whole log and emits a single
// count notification. Join notifications are not sent for players found.
// The caller must have set src.reconstructing under the registry lock.
func (m *Monitor) reconstruct(src *source) {
	tailer := NewTailer(src.path)
	lines, err := tailer.ReadAll()
	if err != nil {
		m.sources.mu.Lock()
		src.reconstructing = false
		m.sources.mu.Unlock()
		m.logger.Warn("failed to reconstruct presence", logging.Field("server", src.name), logging.Field("path", src.path), logging.Field("error", err))
		return
	}
	present := Reconstruct(src.name, lines, m.now())

	m.sources.mu.Lock()
	src.reconstructing = false
	if m.sources.byName[src.name] != src {
		m.sources.mu.Unlock()
		return
	}
	src.tailer = tailer
	src.presence = present
	src.reconstructed = true
	count := len(present)
	m.sources.mu.Unlock()

	m.logger.Info("reconstructed server presence",
		logging.Field("server", src.name),
		logging.Field("lines", len(lines)),
		logging.Field("online", count),
		logging.Field("offset", tailer.Offset),
	)
	m.notifyCount(src.name, count)
}

// pendingReconstruction claims every enabled source that has not been
// reconstructed and is not already being reconstructed elsewhere.
func (m *Monitor) pendingReconstruction() []*source {
	m.sources.mu.Lock()
	defer m.sources.mu.Unlock()
	pending := []*source{}
	for _, src := range m.sources.byName {
		if src.enabled && !src.reconstructed && !src.reconstructing {
			src.reconstructing = true
			pending = append(pending, src)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].name < pending[j].name })
	return pending
}

func (m *Monitor) enabledNames() []string {
	m.sources.mu.Lock()
	defer m.sources.mu.Unlock()
	names := make([]string, 0, len(m.sources.byName))
	for name, src := range m.sources.byName {
		if src.enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (m *Monitor) enabledCount() int {
	return len(m.enabledNames())
}

// OnlinePlayers returns a copy of the presence set for a server, sorted by name.
func (m *Monitor) OnlinePlayers(name string) []Entry {
	m.sources.mu.Lock()
	defer m.sources.mu.Unlock()
	src, ok := m.sources.byName[name]
	if !ok {
		return nil
	}
	entries := make([]Entry, 0, len(src.presence))
	for _, entry := range src.presence {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

func (m *Monitor) Count(name string) int {
	m.sources.mu.Lock()
	defer m.sources.mu.Unlock()
	if src, ok := m.sources.byName[name]; ok {
		return len(src.presence)
	}
	return 0
}

func (m *Monitor) Servers() []ServerInfo {
	m.sources.mu.Lock()
	defer m.sources.mu.Unlock()
	out := make([]ServerInfo, 0, len(m.sources.byName))
	for _, src := range m.sources.byName {
		out = append(out, ServerInfo{
			Name:          src.name,
			LogPath:       src.path,
			Enabled:       src.enabled,
			Reconstructed: src.reconstructed,
			Online:        len(src.presence),
			Offset:        src.tailer.Offset,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
