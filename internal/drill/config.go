// Package drill generates synthetic training traffic against a running
// instance and verifies the leaderboard invariants afterwards.
package drill

import (
	"flag"
	"runtime"
	"time"
)

// Config holds the drill tool's settings.
type Config struct {
	BaseURL     string
	Users       int
	Submissions int
	Workers     int
	Timeout     time.Duration
	AuthSecret  string
	TokenTTL    time.Duration
	Verbose     bool
}

// ParseFlags builds a Config from command-line flags.
func ParseFlags() *Config {
	cfg := &Config{}
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:9090", "base URL of the service")
	flag.IntVar(&cfg.Users, "users", 100, "number of synthetic users")
	flag.IntVar(&cfg.Submissions, "submissions", 1000, "number of score submissions")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "number of concurrent submitters")
	flag.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	flag.StringVar(&cfg.AuthSecret, "secret", "", "shared HS256 secret matching the server")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", time.Hour, "lifetime of minted tokens")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()
	return cfg
}
