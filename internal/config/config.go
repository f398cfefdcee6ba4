package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Source   Source   `yaml:"source"`
	Analysis Analysis `yaml:"analysis"`
	Rules    Rules    `yaml:"rules"`
	Baseline Baseline `yaml:"baseline"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

type Source struct {
	Wanted       WantedConfig `yaml:"wanted"`
	Feeds        []Feed       `yaml:"feeds"`
	FetchDetails bool         `yaml:"fetch_details"`
}

type WantedConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	PageSize    int    `yaml:"page_size"`
	MaxPages    int    `yaml:"max_pages"`
	RateDelayMS int    `yaml:"rate_delay_ms"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// Analysis holds the statistical thresholds consumed by the analyzers.
// Every analyzer receives these values explicitly; there is no package-level
// mutable state.
type Analysis struct {
	Alpha                 float64 `yaml:"alpha"`
	MinWeaponsSample      int     `yaml:"min_weapons_sample"`
	MinExpectedCell       float64 `yaml:"min_expected_cell"`
	MinGeoSample          int     `yaml:"min_geo_sample"`
	ResidualTopN          int     `yaml:"residual_top_n"`
	OverRatio             float64 `yaml:"over_ratio"`
	UnderRatio            float64 `yaml:"under_ratio"`
	ComparisonShiftPoints float64 `yaml:"comparison_shift_points"`
	ClusterThreshold      float64 `yaml:"cluster_threshold"`
}

// Rules holds the ordered keyword rules used by the text categorizer.
type Rules struct {
	NegationKeywords  []string          `yaml:"negation_keywords"`
	WeaponRules       []WeaponRule      `yaml:"weapon_rules"`
	SeriousCategories []string          `yaml:"serious_categories"`
	SeriousKeywords   []string          `yaml:"serious_keywords"`
	CrimeFamilies     []CrimeFamilyRule `yaml:"crime_families"`
}

type WeaponRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

type CrimeFamilyRule struct {
	Family   string   `yaml:"family"`
	Keywords []string `yaml:"keywords"`
}

// Baseline holds the reference distributions the bias tests compare against.
type Baseline struct {
	StatePopulations map[string]float64  `yaml:"state_populations"`
	Regions          map[string][]string `yaml:"regions"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port        int    `yaml:"port"`
	RefreshCron string `yaml:"refresh_cron"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// validWeaponCategories are the categories a weapon rule may map to.
var validWeaponCategories = map[string]bool{
	"firearm":      true,
	"knife":        true,
	"blunt_object": true,
	"none":         true,
	"unknown":      true,
	"other":        true,
}

// ConfigDir returns the XDG config directory for caselens.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "caselens")
}

// DataDir returns the XDG data directory for caselens.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "caselens")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/caselens/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'caselens init' to create a default config",
		xdgConfig,
	)
}

// Load reads, parses, and validates a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	return parse(nil)
}

// parse parses YAML bytes into a Config. The embedded default.yaml supplies
// every default; the user file is overlaid on top, so a partial config only
// overrides what it names.
func parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(DefaultConfigYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing built-in defaults: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants the analyzers depend on.
// Violations are caller errors and are rejected up front rather than
// defaulted away.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.Alpha <= 0 || a.Alpha >= 1 {
		return fmt.Errorf("analysis.alpha must be between 0 and 1 exclusive, got %v", a.Alpha)
	}
	if a.MinWeaponsSample < 1 {
		return fmt.Errorf("analysis.min_weapons_sample must be at least 1, got %d", a.MinWeaponsSample)
	}
	if a.MinExpectedCell <= 0 {
		return fmt.Errorf("analysis.min_expected_cell must be positive, got %v", a.MinExpectedCell)
	}
	if a.MinGeoSample < 2 {
		return fmt.Errorf("analysis.min_geo_sample must be at least 2, got %d", a.MinGeoSample)
	}
	if a.ResidualTopN < 1 {
		return fmt.Errorf("analysis.residual_top_n must be at least 1, got %d", a.ResidualTopN)
	}
	if a.OverRatio <= 1 {
		return fmt.Errorf("analysis.over_ratio must be greater than 1, got %v", a.OverRatio)
	}
	if a.UnderRatio <= 0 || a.UnderRatio >= 1 {
		return fmt.Errorf("analysis.under_ratio must be between 0 and 1 exclusive, got %v", a.UnderRatio)
	}
	if a.ClusterThreshold <= 0 {
		return fmt.Errorf("analysis.cluster_threshold must be positive, got %v", a.ClusterThreshold)
	}

	if len(c.Rules.WeaponRules) == 0 {
		return fmt.Errorf("rules.weapon_rules must not be empty")
	}
	for i, r := range c.Rules.WeaponRules {
		if !validWeaponCategories[r.Category] {
			return fmt.Errorf("rules.weapon_rules[%d]: unknown category %q", i, r.Category)
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("rules.weapon_rules[%d] (%s): keywords must not be empty", i, r.Category)
		}
	}

	if len(c.Baseline.StatePopulations) == 0 {
		return fmt.Errorf("baseline.state_populations must not be empty")
	}
	for state, pop := range c.Baseline.StatePopulations {
		if pop <= 0 {
			return fmt.Errorf("baseline.state_populations[%s] must be positive, got %v", state, pop)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
