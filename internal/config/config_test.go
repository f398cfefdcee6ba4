package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Analysis.Alpha != 0.05 {
		t.Errorf("expected alpha 0.05, got %v", cfg.Analysis.Alpha)
	}
	if cfg.Analysis.MinWeaponsSample != 30 {
		t.Errorf("expected min_weapons_sample 30, got %d", cfg.Analysis.MinWeaponsSample)
	}
	if cfg.Analysis.MinExpectedCell != 5 {
		t.Errorf("expected min_expected_cell 5, got %v", cfg.Analysis.MinExpectedCell)
	}
	if len(cfg.Baseline.StatePopulations) < 49 {
		t.Errorf("expected at least 49 baseline states, got %d", len(cfg.Baseline.StatePopulations))
	}
	if cfg.Baseline.StatePopulations["CA"] != 39.5 {
		t.Errorf("expected CA population 39.5, got %v", cfg.Baseline.StatePopulations["CA"])
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestDefaultRuleOrder(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("failed to build default config: %v", err)
	}

	rules := cfg.Rules.WeaponRules
	if len(rules) < 4 {
		t.Fatalf("expected at least 4 weapon rules, got %d", len(rules))
	}
	if rules[0].Category != "firearm" {
		t.Errorf("expected first rule to be firearm, got %q", rules[0].Category)
	}
	// The generic armed/weapon catch-all must come last so it cannot shadow
	// the specific knife and blunt_object rules.
	last := rules[len(rules)-1]
	hasArmed := false
	for _, kw := range last.Keywords {
		if kw == "armed" {
			hasArmed = true
		}
	}
	if !hasArmed {
		t.Errorf("expected trailing catch-all rule with 'armed', got %v", last.Keywords)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
analysis:
  alpha: 0.01
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Analysis.Alpha != 0.01 {
		t.Errorf("expected alpha 0.01, got %v", cfg.Analysis.Alpha)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Analysis.MinWeaponsSample != 30 {
		t.Errorf("expected default min_weapons_sample, got %d", cfg.Analysis.MinWeaponsSample)
	}
	if len(cfg.Rules.WeaponRules) == 0 {
		t.Error("expected default weapon rules to survive overlay")
	}
}

func TestParseRejectsInvalidAlpha(t *testing.T) {
	for _, alpha := range []string{"0", "1", "1.5", "-0.05"} {
		data := []byte("analysis:\n  alpha: " + alpha + "\n")
		if _, err := parse(data); err == nil {
			t.Errorf("expected error for alpha %s", alpha)
		} else if !strings.Contains(err.Error(), "alpha") {
			t.Errorf("expected alpha in error, got %v", err)
		}
	}
}

func TestParseRejectsUnknownWeaponCategory(t *testing.T) {
	data := []byte(`
rules:
  weapon_rules:
    - category: lasers
      keywords: [laser]
`)
	_, err := parse(data)
	if err == nil {
		t.Fatal("expected error for unknown weapon category")
	}
	if !strings.Contains(err.Error(), "lasers") {
		t.Errorf("expected category name in error, got %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Baseline.Regions) == 0 {
		t.Error("expected regions to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
