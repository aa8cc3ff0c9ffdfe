// Command drill replays synthetic training traffic against a running
// instance and verifies the resulting leaderboard.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/rampart/internal/drill"
	"github.com/okian/rampart/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := drill.ParseFlags()
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := drill.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "drill failed", logger.Error(err))
		os.Exit(1)
	}
}
