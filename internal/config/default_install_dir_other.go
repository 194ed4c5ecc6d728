//go:build !linux && !windows

package config

// The dedicated server ships for Windows and Linux only.
func DefaultInstallDir() string {
	return ""
}
