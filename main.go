package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"asa-manager/internal/config"
	"asa-manager/internal/ui/headless"

	flags "github.com/jessevdk/go-flags"
)

var BuildVersion = "dev"

func main() {
	rootCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	opts, err := config.ParseOptions()
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// One manager per data directory; two would race on the player database.
	lock, lockedByOther, lockErr := acquireInstanceLock(opts.DataDir)
	if lockErr != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize single-instance lock:", lockErr)
		os.Exit(2)
	}
	if lockedByOther {
		fmt.Fprintf(os.Stderr, "ASA Manager is already running for %s.\n", opts.DataDir)
		os.Exit(1)
	}
	defer func() {
		_ = lock.Release()
	}()

	if opts.Plain {
		headless.RunPlain(rootCtx, BuildVersion, opts)
		return
	}
	headless.Run(rootCtx, BuildVersion, opts)
}
