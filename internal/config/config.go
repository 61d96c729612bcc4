// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's sentinel kinds.
package config

import "runtime"

// Store driver names accepted by StoreDriver.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the submission-token window.
	DedupeSize int `koanf:"dedupe_size"`

	// InstrumentForm selects the instrument variant: full (108 items) or
	// short (54 items).
	InstrumentForm string `koanf:"instrument_form"`

	// EmergingThreshold marks secondary/tertiary personas below it emerging.
	EmergingThreshold float64 `koanf:"emerging_threshold"`

	// StoreDriver selects the persistence backend: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// SQLiteDSN is the database path when StoreDriver is sqlite.
	SQLiteDSN string `koanf:"sqlite_dsn"`

	// StrictSubmissions rejects submissions whose normalization is not OK.
	// When false, whatever resolved is persisted anyway (diagnostic setups).
	StrictSubmissions bool `koanf:"strict_submissions"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        50_000,
		InstrumentForm:    "full",
		EmergingThreshold: 60,
		StoreDriver:       StoreMemory,
		SQLiteDSN:         "gsq.db",
		StrictSubmissions: true,
	}
}
