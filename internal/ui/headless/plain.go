package headless

import (
	"context"
	"errors"
	"fmt"
	"os"

	"asa-manager/internal/config"
	"asa-manager/internal/logging"
	"asa-manager/internal/runtime"
)

// RunPlain runs the manager without the dashboard, logging to the terminal
// until ctx is cancelled. Intended for service managers and containers.
func RunPlain(rootCtx context.Context, buildVersion string, opts config.Options) {
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	logger := logging.New(opts.Debug)
	defer logger.Close()
	if err := logger.EnableFilePersistence(opts.LogDir, 0); err != nil {
		logger.Warn("failed to enable file log persistence", logging.Field("error", err))
	}
	logger.Info("starting manager", logging.Field("version", buildVersion), logging.Field("mode", "plain"))

	exited := make(chan error, 1)
	controller := runtime.NewController(rootCtx)
	err := controller.Start(opts, logger, runtime.StartHooks{
		OnPresence: func(server string, count int) {
			logger.Info("player count changed", logging.Field("server", server), logging.Field("online", count))
		},
		OnExit: func(err error) { exited <- err },
	})
	if err != nil {
		logger.Error("failed to start manager", logging.Field("error", err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(runErrorExitCode)
	}

	var runErr error
	select {
	case runErr = <-exited:
	case <-rootCtx.Done():
		logger.Info("shutdown requested")
		if !controller.StopAndWait(stopWaitTimeout) {
			logger.Warn("manager did not stop in time", logging.Field("timeout", stopWaitTimeout.String()))
			return
		}
		runErr = <-exited
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("manager exited with error", logging.Field("error", runErr))
		_ = logger.Close()
		os.Exit(runErrorExitCode)
	}
}
