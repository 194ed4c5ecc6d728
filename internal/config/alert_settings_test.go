package config

import (
	"path/filepath"
	"testing"

	"asa-manager/internal/alerts"
	"asa-manager/internal/arklog"
)

func TestAlertSettings_DefaultsWhenMissing(t *testing.T) {
	rules, err := LoadAlertSettings(filepath.Join(t.TempDir(), "alerts.json"))
	if err != nil {
		t.Fatalf("LoadAlertSettings() error = %v", err)
	}
	if got, want := rules[arklog.KindJoin], alerts.DefaultRules()[arklog.KindJoin]; got != want {
		t.Fatalf("join rule = %+v, want %+v", got, want)
	}
}

func TestAlertSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "alerts.json")
	custom := alerts.Rule{Enabled: false, Template: "{player} is gone", Color: "#101010"}
	if err := SaveAlertSettings(path, alerts.Rules{arklog.KindLeave: custom}); err != nil {
		t.Fatalf("SaveAlertSettings() error = %v", err)
	}
	rules, err := LoadAlertSettings(path)
	if err != nil {
		t.Fatalf("LoadAlertSettings() error = %v", err)
	}
	if rules[arklog.KindLeave] != custom {
		t.Fatalf("leave rule = %+v, want %+v", rules[arklog.KindLeave], custom)
	}
	if len(rules) != len(arklog.Kinds) {
		t.Fatalf("len(rules) = %d, want %d", len(rules), len(arklog.Kinds))
	}
}
