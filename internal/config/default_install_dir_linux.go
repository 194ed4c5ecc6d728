//go:build linux

package config

import (
	"os"
	"path/filepath"
)

func DefaultInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".steam", "steam", "steamapps", "common", "ARK Survival Ascended Dedicated Server")
}
