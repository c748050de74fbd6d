package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL          = "https://bitjita.com/api"
	DefaultAPITimeout       = 30 * time.Second
	DefaultMaxRetries       = 3
	DefaultRetryBackoff     = 1 * time.Second
	DefaultSummaryBatch     = 100
	DefaultAPIBatchDelay    = 200 * time.Millisecond
	DefaultRegion           = 1
	DefaultStoreBatchSize   = 200
	DefaultStoreBatchDelay  = 150 * time.Millisecond
	DefaultSyncMode         = "bulk"
	DefaultDetailBudget     = 50
	DefaultSequentialBudget = 25
	DefaultSyncInterval     = 5 * time.Minute
	DefaultChangeLogMax     = 1000
	DefaultRetentionWindow  = 8 * time.Hour
	DefaultCleanupInterval  = 1 * time.Hour
	DefaultSnapshotPath     = "bazaar-snapshot.json"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}
	if c.API.SummaryBatch == 0 {
		c.API.SummaryBatch = DefaultSummaryBatch
	}
	if c.API.BatchDelay == 0 {
		c.API.BatchDelay = DefaultAPIBatchDelay
	}
	if c.API.Region == 0 {
		c.API.Region = DefaultRegion
	}

	// Store defaults (url/api_key stay empty: local-only mode)
	if c.Store.BatchSize == 0 {
		c.Store.BatchSize = DefaultStoreBatchSize
	}
	if c.Store.BatchDelay == 0 {
		c.Store.BatchDelay = DefaultStoreBatchDelay
	}

	// Sync defaults
	if c.Sync.Mode == "" {
		c.Sync.Mode = DefaultSyncMode
	}
	if c.Sync.DetailBudget == 0 {
		c.Sync.DetailBudget = DefaultDetailBudget
	}
	if c.Sync.SequentialBudget == 0 {
		c.Sync.SequentialBudget = DefaultSequentialBudget
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = DefaultSyncInterval
	}
	if c.Sync.ChangeLogMax == 0 {
		c.Sync.ChangeLogMax = DefaultChangeLogMax
	}
	if c.Sync.RetentionWindow == 0 {
		c.Sync.RetentionWindow = DefaultRetentionWindow
	}
	if c.Sync.CleanupInterval == 0 {
		c.Sync.CleanupInterval = DefaultCleanupInterval
	}

	// Snapshot defaults
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = DefaultSnapshotPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
