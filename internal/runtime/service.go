package runtime

import (
	"asa-manager/internal/app"
	"asa-manager/internal/config"
	"asa-manager/internal/logging"
)

func NewService(opts config.Options, logger *logging.Logger) (*app.Service, error) {
	return NewServiceWithHooks(opts, logger, StartHooks{})
}

func NewServiceWithHooks(opts config.Options, logger *logging.Logger, hooks StartHooks) (*app.Service, error) {
	if logger == nil {
		panic("runtime.NewServiceWithHooks: logger must not be nil")
	}
	if err := config.ValidateRequired(opts); err != nil {
		return nil, err
	}
	logger.Debug("constructed manager service",
		logging.Field("servers_file", opts.ServersFile),
		logging.Field("database", config.DatabasePath(opts)),
		logging.Field("alerts_file", opts.AlertsFile),
		logging.Field("poll_interval", opts.PollInterval.String()),
		logging.Field("watch", opts.Watch),
	)
	return app.New(opts, logger, app.Callbacks{
		OnStatusChange: hooks.OnStatus,
		OnPresence:     hooks.OnPresence,
	}), nil
}
