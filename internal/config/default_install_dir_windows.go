//go:build windows

package config

import (
	"os"
	"path/filepath"
)

func DefaultInstallDir() string {
	root := os.Getenv("ProgramFiles(x86)")
	if root == "" {
		root = `C:\Program Files (x86)`
	}
	return filepath.Join(root, "Steam", "steamapps", "common", "ARK Survival Ascended Dedicated Server")
}
