// Package config defines service configuration structures and loading hooks.
//
// Conventions follow the rest of the codebase: defaults come from New,
// Load layers an optional YAML file and RAMPART_-prefixed environment
// variables on top, and loading failures wrap this package's error kinds.
package config

import "context"

// Storage backend names accepted in the Storage field.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// TopN caps the leaderboard table size.
	TopN int `koanf:"top_n"`

	// SubmitRetries bounds optimistic-concurrency retries on conflicted
	// progress and leaderboard writes.
	SubmitRetries int `koanf:"submit_retries"`

	// Storage selects the key-value backend: memory or sqlite.
	Storage string `koanf:"storage"`

	// SQLitePath locates the database file when Storage is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// AuthSecret is the shared HS256 secret for bearer-token verification.
	AuthSecret string `koanf:"auth_secret"`
}

// New creates a Config with defaults. Context is accepted first per the
// project-wide convention; it is reserved for future loading hooks.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":9090",
		TopN:          50,
		SubmitRetries: 3,
		Storage:       StorageMemory,
		SQLitePath:    "rampart.db",
		AuthSecret:    "",
	}
}
