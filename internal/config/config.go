// Package config loads the YAML configuration file, expands environment
// variables, applies defaults, and validates the result.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the sync tool.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Store    StoreConfig    `yaml:"store"`
	Sync     SyncConfig     `yaml:"sync"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIConfig holds market API settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	SummaryBatch int           `yaml:"summary_batch"`
	BatchDelay   time.Duration `yaml:"batch_delay"`
	Region       int           `yaml:"region"`
}

// StoreConfig holds the remote backing store connection. URL and APIKey
// usually come from the environment (`${SUPABASE_URL}` style expansion);
// when either is empty the tool runs local-only.
type StoreConfig struct {
	URL        string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"`
	BatchSize  int           `yaml:"batch_size"`
	BatchDelay time.Duration `yaml:"batch_delay"`
}

// SyncConfig holds cycle behavior settings.
type SyncConfig struct {
	Mode             string        `yaml:"mode"` // bulk | sequential
	DetailBudget     int           `yaml:"detail_budget"`
	SequentialBudget int           `yaml:"sequential_budget"`
	Interval         time.Duration `yaml:"interval"`
	ChangeLogMax     int           `yaml:"change_log_max"`
	RetentionWindow  time.Duration `yaml:"retention_window"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval"`
}

// SnapshotConfig holds the local snapshot file location.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads a YAML config file and expands ${VAR} environment variables.
// A missing file is not an error: the tool runs fine on defaults plus
// environment, so Load returns an empty config for defaults to fill in.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
