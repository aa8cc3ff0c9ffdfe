package drill

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/rampart/internal/domain/training"
	"github.com/okian/rampart/pkg/logger"
)

// Result summarizes one drill run.
type Result struct {
	Submitted int64
	Failed    int64
	Elapsed   time.Duration
	TableSize int
}

// Run fires cfg.Submissions score submissions at the service from
// cfg.Workers concurrent submitters, then fetches the leaderboard and
// verifies its invariants.
func Run(ctx context.Context, cfg *Config) (Result, error) {
	if cfg.AuthSecret == "" {
		return Result{}, errors.New("a -secret matching the server is required")
	}

	log := logger.Named("drill")
	client := NewClient(cfg.BaseURL, cfg.Timeout, []byte(cfg.AuthSecret), cfg.TokenTTL)

	users := NewUsers(cfg.Users)
	subs := NewSubmissions(users, cfg.Submissions)
	log.Info(ctx, "starting drill",
		logger.String("url", cfg.BaseURL),
		logger.Int("users", len(users)),
		logger.Int("submissions", len(subs)),
		logger.Int("workers", cfg.Workers),
	)

	var submitted, failed atomic.Int64
	work := make(chan Submission)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range work {
				if err := client.SubmitScore(ctx, sub); err != nil {
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "submission failed",
							logger.String("user", sub.Identity.Name),
							logger.Error(err),
						)
					}
					continue
				}
				submitted.Add(1)
			}
		}()
	}

feed:
	for _, sub := range subs {
		select {
		case work <- sub:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	rows, err := client.FetchLeaderboard(ctx)
	if err != nil {
		return Result{}, err
	}
	maxTotal := len(training.Modules()) * training.MaxScore
	if err := VerifyLeaderboard(rows, 50, maxTotal); err != nil {
		return Result{}, err
	}

	res := Result{
		Submitted: submitted.Load(),
		Failed:    failed.Load(),
		Elapsed:   time.Since(start),
		TableSize: len(rows),
	}
	log.Info(ctx, "drill finished",
		logger.Int64("submitted", res.Submitted),
		logger.Int64("failed", res.Failed),
		logger.Duration("elapsed", res.Elapsed),
		logger.Int("table_size", res.TableSize),
	)
	return res, nil
}
