// Package rank maintains the global top-N leaderboard derived from progress
// totals.
//
// The whole table lives under one key so a rewrite is remove-then-insert on
// the decoded slice followed by a stable sort and a truncation. The write is
// a versioned CompareAndSwap retried a bounded number of times; two users
// finishing modules at the same moment both land on the table, whichever
// order the conflicts resolve in.
//
// Tie-break: equal totals rank earliest-achieved-first. The recomputed entry
// is appended after the survivors and the sort is stable, so a user matching
// an existing total slots in behind it.
package rank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/okian/rampart/internal/adapters/kv"
	"github.com/okian/rampart/internal/domain/model"
	"github.com/okian/rampart/pkg/logger"
	"github.com/okian/rampart/pkg/metrics"
	"github.com/sethvargo/go-retry"
)

const tableKey = "leaderboard"

// Defaults for the table shape and concurrency control.
const (
	defaultCapacity   = 50
	defaultRetries    = 3
	defaultRetryDelay = 5 * time.Millisecond
)

// Board owns the single global leaderboard table.
type Board struct {
	store      kv.Store
	capacity   int
	retries    uint64
	retryDelay time.Duration
	now        func() time.Time
	log        logger.Logger
}

// Option applies a configuration option to the Board.
type Option func(*Board)

// WithCapacity caps the table at n entries.
func WithCapacity(n int) Option {
	return func(b *Board) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// WithRetries bounds conflict retries on the table write.
func WithRetries(n int) Option {
	return func(b *Board) {
		if n >= 0 {
			b.retries = uint64(n)
		}
	}
}

// WithRetryDelay sets the pause between conflict retries.
func WithRetryDelay(d time.Duration) Option {
	return func(b *Board) {
		if d > 0 {
			b.retryDelay = d
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates a Board backed by store with a default capacity of 50.
func New(store kv.Store, opts ...Option) *Board {
	b := &Board{
		store:      store,
		capacity:   defaultCapacity,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.Named("rank")
	}
	return b
}

// Recompute replaces id's entry with one derived from rec and rewrites the
// table: sort descending by total, truncate to capacity. Entries pushed past
// the cap are dropped silently; they re-enter if their total later qualifies.
func (b *Board) Recompute(ctx context.Context, id model.Identity, rec model.Record) error {
	total := rec.Total()

	backoff := retry.WithMaxRetries(b.retries, retry.NewConstant(b.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		entries, version, err := b.load(ctx)
		if err != nil {
			return err
		}

		next := make([]model.Entry, 0, len(entries)+1)
		for _, e := range entries {
			if e.UserID != id.UserID {
				next = append(next, e)
			}
		}
		next = append(next, model.Entry{
			UserID:      id.UserID,
			Name:        id.Name,
			TotalScore:  total,
			LastUpdated: b.now().UTC(),
		})
		sort.SliceStable(next, func(i, j int) bool {
			return next[i].TotalScore > next[j].TotalScore
		})
		if len(next) > b.capacity {
			next = next[:b.capacity]
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode leaderboard: %w", err)
		}
		if err := b.store.CompareAndSwap(ctx, tableKey, data, version); err != nil {
			if errors.Is(err, kv.ErrConflict) {
				metrics.RecordStoreRetry()
				b.log.Debug(ctx, "leaderboard write conflicted, retrying",
					logger.String("user_id", id.UserID),
				)
				return retry.RetryableError(err)
			}
			return fmt.Errorf("write leaderboard: %w", err)
		}

		metrics.RecordRecompute()
		metrics.UpdateLeaderboardSize(len(next))
		return nil
	})
	return err
}

// Top returns the current table, already sorted. An absent table is an empty
// slice, not an error.
func (b *Board) Top(ctx context.Context) ([]model.Entry, error) {
	entries, _, err := b.load(ctx)
	return entries, err
}

func (b *Board) load(ctx context.Context) ([]model.Entry, int64, error) {
	v, found, err := b.store.Get(ctx, tableKey)
	if err != nil {
		return nil, 0, fmt.Errorf("read leaderboard: %w", err)
	}
	if !found {
		return []model.Entry{}, 0, nil
	}
	var entries []model.Entry
	if err := json.Unmarshal(v.Data, &entries); err != nil {
		return nil, 0, fmt.Errorf("decode leaderboard: %w", err)
	}
	return entries, v.Version, nil
}
