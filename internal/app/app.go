package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"asa-manager/internal/alerts"
	"asa-manager/internal/arklog"
	"asa-manager/internal/config"
	"asa-manager/internal/logging"
	"asa-manager/internal/presence"
	"asa-manager/internal/rcon"
	"asa-manager/internal/runstatus"
	"asa-manager/internal/storage"
)

// Service wires the presence monitor, chat alerts, RCON and the player
// database for one run.
type Service struct {
	opts   config.Options
	logger *logging.Logger
	hooks  Callbacks
	status runtimeStatusState

	mu      sync.RWMutex
	monitor *presence.Monitor
	alerts  *alerts.Manager
	store   *storage.Store
}

type Callbacks struct {
	OnStatusChange func(string)
	OnPresence     func(server string, count int)
}

func New(opts config.Options, logger *logging.Logger, hooks Callbacks) *Service {
	if logger == nil {
		panic("app.New: logger must not be nil")
	}
	return &Service{opts: opts, logger: logger, hooks: hooks}
}

func (s *Service) RunContext(ctx context.Context) error {
	s.setRuntimeStatus(runstatus.Starting)
	s.logger.Info("manager service starting",
		logging.Field("servers_file", s.opts.ServersFile),
		logging.Field("data_dir", s.opts.DataDir),
	)

	servers, err := config.LoadServers(s.opts.ServersFile)
	if err != nil {
		s.setRuntimeStatus(runstatus.Stopped)
		return err
	}

	store, err := storage.Open(config.DatabasePath(s.opts))
	if err != nil {
		s.setRuntimeStatus(runstatus.Stopped)
		return fmt.Errorf("opening player database: %w", err)
	}
	defer store.Close()

	rules, err := config.LoadAlertSettings(s.opts.AlertsFile)
	if err != nil {
		s.logger.Warn("failed to load alert settings, using defaults", logging.Field("path", s.opts.AlertsFile), logging.Field("error", err))
		rules = alerts.DefaultRules()
	}

	rconClient := rcon.NewClient(rcon.Options{}, s.logger)
	defer rconClient.Close()
	for _, srv := range servers {
		if strings.TrimSpace(srv.RCON.Address) == "" {
			s.logger.Debug("no rcon address, alerts disabled for server", logging.Field("server", srv.Name))
			continue
		}
		rconClient.SetTarget(srv.Name, rcon.Target{Address: srv.RCON.Address, Password: srv.RCON.Password})
	}

	manager := alerts.NewManager(alerts.Options{}, rules, rconClient, store, s.logger)
	monitor := presence.NewMonitor(presence.Options{
		PollInterval: s.opts.PollInterval,
		Watch:        s.opts.Watch,
	}, s.logger, manager)
	monitor.Subscribe(storage.NewSessionRecorder(store, s.logger))
	monitor.Subscribe(presence.ObserverFuncs{OnCount: s.notifyPresence})

	s.setRuntimeStatus(runstatus.Reconstructing)
	enabled := 0
	for _, srv := range servers {
		if err := monitor.AddServer(srv.Name, srv.LogPath, srv.IsEnabled()); err != nil {
			s.logger.Warn("failed to register server", logging.Field("server", srv.Name), logging.Field("error", err))
			continue
		}
		if srv.IsEnabled() {
			enabled++
		}
	}
	if enabled == 0 {
		s.logger.Warn(ErrNoEnabledServer.Error(), logging.Field("servers", len(servers)))
	}

	s.attach(monitor, manager, store)
	defer s.attach(nil, nil, nil)

	alertsDone := make(chan struct{})
	go func() {
		defer close(alertsDone)
		_ = manager.Run(ctx)
	}()

	if err := monitor.Start(ctx); err != nil {
		s.setRuntimeStatus(runstatus.Stopped)
		return err
	}
	s.setRuntimeStatus(runstatus.Monitoring)

	<-ctx.Done()
	s.setRuntimeStatus(runstatus.Stopping)
	monitor.Stop()
	<-alertsDone
	s.setRuntimeStatus(runstatus.Stopped)
	s.logger.Info("manager service stopped")
	return nil
}

func (s *Service) attach(monitor *presence.Monitor, manager *alerts.Manager, store *storage.Store) {
	s.mu.Lock()
	s.monitor = monitor
	s.alerts = manager
	s.store = store
	s.mu.Unlock()
}

func (s *Service) database() (*storage.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNotRunning
	}
	return s.store, nil
}

func (s *Service) running() (*presence.Monitor, *alerts.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.monitor == nil {
		return nil, nil, ErrNotRunning
	}
	return s.monitor, s.alerts, nil
}

func (s *Service) Servers() []presence.ServerInfo {
	monitor, _, err := s.running()
	if err != nil {
		return nil
	}
	return monitor.Servers()
}

func (s *Service) OnlinePlayers(server string) []presence.Entry {
	monitor, _, err := s.running()
	if err != nil {
		return nil
	}
	return monitor.OnlinePlayers(server)
}

// PlayerHistory returns the stored character for uniqueID and its newest
// sightings. A player never recorded yields storage.ErrNotFound.
func (s *Service) PlayerHistory(ctx context.Context, uniqueID string, limit int) (*storage.Character, []storage.Sighting, error) {
	store, err := s.database()
	if err != nil {
		return nil, nil, err
	}
	character, err := store.Character(ctx, uniqueID)
	if err != nil {
		return nil, nil, err
	}
	sightings, err := store.Sightings(ctx, uniqueID, limit)
	if err != nil {
		return nil, nil, err
	}
	return character, sightings, nil
}

// OpenSessions lists the sessions on server that have no leave recorded yet.
func (s *Service) OpenSessions(ctx context.Context, server string) ([]storage.Session, error) {
	store, err := s.database()
	if err != nil {
		return nil, err
	}
	return store.ActiveSessions(ctx, server)
}

func (s *Service) EnableServer(server string, enabled bool) error {
	monitor, _, err := s.running()
	if err != nil {
		return err
	}
	return monitor.EnableServer(server, enabled)
}

func (s *Service) ResetServerPresence(server string) error {
	monitor, _, err := s.running()
	if err != nil {
		return err
	}
	return monitor.ResetServerPresence(server)
}

func (s *Service) AlertRules() alerts.Rules {
	_, manager, err := s.running()
	if err != nil {
		return nil
	}
	return manager.Rules()
}

// ToggleAlert flips one alert kind on or off and saves the rule table.
func (s *Service) ToggleAlert(kind arklog.Kind) (bool, error) {
	_, manager, err := s.running()
	if err != nil {
		return false, err
	}
	rule, ok := manager.Rules()[kind]
	if !ok {
		return false, fmt.Errorf("unknown alert kind %q", kind)
	}
	rule.Enabled = !rule.Enabled
	if err := manager.SetRule(kind, rule); err != nil {
		return false, err
	}
	if err := config.SaveAlertSettings(s.opts.AlertsFile, manager.Rules()); err != nil {
		return rule.Enabled, fmt.Errorf("saving alert settings: %w", err)
	}
	s.logger.Info("alert rule toggled", logging.Field("kind", string(kind)), logging.Field("enabled", rule.Enabled))
	return rule.Enabled, nil
}

func (s *Service) notifyPresence(server string, count int) {
	if s.hooks.OnPresence == nil {
		return
	}
	s.hooks.OnPresence(server, count)
}

type runtimeStatusState struct {
	mu      sync.Mutex
	current string
}

func (r *runtimeStatusState) update(status string) (string, string, bool) {
	trimmed := strings.TrimSpace(status)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == trimmed {
		return r.current, trimmed, false
	}
	previous := r.current
	r.current = trimmed
	return previous, trimmed, true
}

func (s *Service) setRuntimeStatus(status string) {
	previous, next, changed := s.status.update(status)
	if !changed {
		return
	}
	s.logger.Debug("runtime status transition",
		logging.Field("from", previous),
		logging.Field("to", next),
	)
	if s.hooks.OnStatusChange != nil {
		s.hooks.OnStatusChange(status)
	}
}
