package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"asa-manager/internal/alerts"
)

type AlertSettings struct {
	Rules alerts.Rules `json:"rules"`
}

// LoadAlertSettings returns the saved alert rules, or the defaults when the
// file does not exist yet.
func LoadAlertSettings(path string) (alerts.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return alerts.DefaultRules(), nil
		}
		return nil, err
	}
	var settings AlertSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return settings.Rules.Clone(), nil
}

func SaveAlertSettings(path string, rules alerts.Rules) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(AlertSettings{Rules: rules}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}
