package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

const appDirName = "asa-manager"

type Options struct {
	ServersFile  string        `long:"servers" env:"ASA_SERVERS_FILE" description:"YAML file listing the servers to monitor"`
	DataDir      string        `long:"data-dir" env:"ASA_DATA_DIR" description:"Directory holding the player database"`
	LogDir       string        `long:"log-dir" env:"ASA_LOG_DIR" description:"Directory for persisted manager logs"`
	AlertsFile   string        `long:"alerts" env:"ASA_ALERTS_FILE" description:"JSON file with chat alert rules"`
	PollInterval time.Duration `long:"poll-interval" env:"ASA_POLL_INTERVAL" default:"1s" description:"How often server logs are polled"`
	Watch        bool          `long:"watch" env:"ASA_WATCH" description:"Also wake on file system notifications between polls"`
	Plain        bool          `long:"plain" env:"ASA_PLAIN" description:"Print log lines instead of the terminal dashboard"`
	Debug        bool          `long:"debug" env:"ASA_DEBUG" description:"Enable verbose debug output"`
}

func ParseOptions() (Options, error) {
	_ = godotenv.Load()
	opts := Options{}
	if _, err := flags.Parse(&opts); err != nil {
		return Options{}, err
	}
	return withDefaults(opts)
}

func withDefaults(opts Options) (Options, error) {
	root, err := configRoot()
	if err != nil {
		return Options{}, err
	}
	if strings.TrimSpace(opts.ServersFile) == "" {
		opts.ServersFile = filepath.Join(root, "servers.yaml")
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = root
	}
	if strings.TrimSpace(opts.AlertsFile) == "" {
		opts.AlertsFile = filepath.Join(root, "alerts.json")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return opts, nil
}

func ValidateRequired(opts Options) error {
	if strings.TrimSpace(opts.ServersFile) == "" {
		return errors.New("servers file is required")
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		return errors.New("data directory is required")
	}
	return nil
}

// DatabasePath is where the player database lives inside the data directory.
func DatabasePath(opts Options) string {
	return filepath.Join(opts.DataDir, "players.db")
}

func configRoot() (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appDirName), nil
}
