package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if RAMPART_CONFIG is set
//  3. env (prefix RAMPART_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("RAMPART_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RAMPART_ADDR, RAMPART_TOP_N, ...
	// Keys keep their underscores to match the koanf struct tags.
	envProvider := env.Provider("RAMPART_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "rampart_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.TopN < 1 {
		return fmt.Errorf("%w: top_n must be positive", ErrInvalidConfig)
	}
	if c.SubmitRetries < 0 {
		return fmt.Errorf("%w: submit_retries must not be negative", ErrInvalidConfig)
	}
	switch c.Storage {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path required for sqlite storage", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage)
	}
	if c.AuthSecret == "" {
		return fmt.Errorf("%w: auth_secret must be set", ErrInvalidConfig)
	}
	return nil
}
