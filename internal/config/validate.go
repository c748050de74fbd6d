package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}
	if c.API.SummaryBatch < 1 {
		return errors.New("api.summary_batch must be >= 1")
	}
	if c.API.Region < 1 {
		return errors.New("api.region must be >= 1")
	}

	// Store URL and key are optional together; one without the other is a
	// misconfiguration rather than local-only mode.
	if (c.Store.URL == "") != (c.Store.APIKey == "") {
		return errors.New("store.url and store.api_key must be set together")
	}
	if c.Store.BatchSize < 1 {
		return errors.New("store.batch_size must be >= 1")
	}

	switch c.Sync.Mode {
	case "bulk", "sequential":
	default:
		return fmt.Errorf("sync.mode must be bulk or sequential, got %q", c.Sync.Mode)
	}
	if c.Sync.DetailBudget < 1 {
		return errors.New("sync.detail_budget must be >= 1")
	}
	if c.Sync.SequentialBudget < 1 {
		return errors.New("sync.sequential_budget must be >= 1")
	}
	if c.Sync.ChangeLogMax < 1 {
		return errors.New("sync.change_log_max must be >= 1")
	}
	if c.Sync.Interval <= 0 {
		return errors.New("sync.interval must be positive")
	}
	if c.Sync.RetentionWindow <= 0 {
		return errors.New("sync.retention_window must be positive")
	}

	if c.Snapshot.Path == "" {
		return errors.New("snapshot.path is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}
