// Package config loads foundry configuration from YAML with sane defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// HealingConfig controls which validation levels may heal.
type HealingConfig struct {
	// Enabled enables healing entirely; when false every failure is final
	Enabled bool `yaml:"enabled"`

	// Structural enables structural repair at the component-logic level
	Structural bool `yaml:"structural"`

	// ConfigRegen enables configuration regeneration at the integration level
	ConfigRegen bool `yaml:"config_regen"`

	// Semantic enables collaborator-driven repair at the semantic level
	Semantic bool `yaml:"semantic"`

	// Budget is the wall-clock ceiling for a single healing attempt
	Budget time.Duration `yaml:"budget"`
}

// ReasonerConfig configures the external semantic collaborator.
type ReasonerConfig struct {
	// Endpoint is the base URL of the reasoner service
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single coherence check or repair request
	Timeout time.Duration `yaml:"timeout"`
}

// Config represents foundry configuration options
type Config struct {
	// ProbeWorkers bounds concurrent dependency probes
	ProbeWorkers int `yaml:"probe_workers"`

	// ProbeTimeout bounds a single resource probe
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// LogicWorkers bounds concurrent per-component contract checks
	LogicWorkers int `yaml:"logic_workers"`

	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// HistoryPath is the directory holding the run-history database
	HistoryPath string `yaml:"history_path"`

	// Healing contains per-level healing switches
	Healing HealingConfig `yaml:"healing"`

	// Reasoner configures the semantic collaborator
	Reasoner ReasonerConfig `yaml:"reasoner"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		ProbeWorkers: 4,
		ProbeTimeout: 5 * time.Second,
		LogicWorkers: 4,
		LogLevel:     "info",
		HistoryPath:  ".foundry",
		Healing: HealingConfig{
			Enabled:     true,
			Structural:  true,
			ConfigRegen: true,
			Semantic:    true,
			Budget:      2 * time.Minute,
		},
		Reasoner: ReasonerConfig{
			Endpoint: "http://localhost:8741",
			Timeout:  60 * time.Second,
		},
	}
}

// LoadConfig loads configuration from the given path, merging file values
// over defaults. A missing file yields the defaults without error; a
// malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations arrive as strings ("30s", "2m") so a temporary struct
	// handles parsing before the merge.
	type yamlHealing struct {
		Enabled     *bool  `yaml:"enabled"`
		Structural  *bool  `yaml:"structural"`
		ConfigRegen *bool  `yaml:"config_regen"`
		Semantic    *bool  `yaml:"semantic"`
		Budget      string `yaml:"budget"`
	}
	type yamlReasoner struct {
		Endpoint string `yaml:"endpoint"`
		Timeout  string `yaml:"timeout"`
	}
	type yamlConfig struct {
		ProbeWorkers int          `yaml:"probe_workers"`
		ProbeTimeout string       `yaml:"probe_timeout"`
		LogicWorkers int          `yaml:"logic_workers"`
		LogLevel     string       `yaml:"log_level"`
		HistoryPath  string       `yaml:"history_path"`
		Healing      yamlHealing  `yaml:"healing"`
		Reasoner     yamlReasoner `yaml:"reasoner"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.ProbeWorkers != 0 {
		cfg.ProbeWorkers = yamlCfg.ProbeWorkers
	}
	if yamlCfg.ProbeTimeout != "" {
		d, err := time.ParseDuration(yamlCfg.ProbeTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid probe_timeout %q: %w", yamlCfg.ProbeTimeout, err)
		}
		cfg.ProbeTimeout = d
	}
	if yamlCfg.LogicWorkers != 0 {
		cfg.LogicWorkers = yamlCfg.LogicWorkers
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.HistoryPath != "" {
		cfg.HistoryPath = yamlCfg.HistoryPath
	}

	if yamlCfg.Healing.Enabled != nil {
		cfg.Healing.Enabled = *yamlCfg.Healing.Enabled
	}
	if yamlCfg.Healing.Structural != nil {
		cfg.Healing.Structural = *yamlCfg.Healing.Structural
	}
	if yamlCfg.Healing.ConfigRegen != nil {
		cfg.Healing.ConfigRegen = *yamlCfg.Healing.ConfigRegen
	}
	if yamlCfg.Healing.Semantic != nil {
		cfg.Healing.Semantic = *yamlCfg.Healing.Semantic
	}
	if yamlCfg.Healing.Budget != "" {
		d, err := time.ParseDuration(yamlCfg.Healing.Budget)
		if err != nil {
			return nil, fmt.Errorf("invalid healing budget %q: %w", yamlCfg.Healing.Budget, err)
		}
		cfg.Healing.Budget = d
	}

	if yamlCfg.Reasoner.Endpoint != "" {
		cfg.Reasoner.Endpoint = yamlCfg.Reasoner.Endpoint
	}
	if yamlCfg.Reasoner.Timeout != "" {
		d, err := time.ParseDuration(yamlCfg.Reasoner.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid reasoner timeout %q: %w", yamlCfg.Reasoner.Timeout, err)
		}
		cfg.Reasoner.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration values for consistency.
func (c *Config) Validate() error {
	if c.ProbeWorkers < 1 {
		return fmt.Errorf("probe_workers must be at least 1, got %d", c.ProbeWorkers)
	}
	if c.LogicWorkers < 1 {
		return fmt.Errorf("logic_workers must be at least 1, got %d", c.LogicWorkers)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be positive, got %s", c.ProbeTimeout)
	}
	if c.Healing.Budget <= 0 {
		return fmt.Errorf("healing budget must be positive, got %s", c.Healing.Budget)
	}
	if c.Reasoner.Timeout <= 0 {
		return fmt.Errorf("reasoner timeout must be positive, got %s", c.Reasoner.Timeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
