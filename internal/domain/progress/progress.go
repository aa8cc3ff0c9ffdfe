// Package progress owns per-user best-score tracking across the training
// modules.
//
// A user's record lives under a single key in the kv store. Submissions are
// read-modify-write: the record is re-read and the merge re-applied on every
// optimistic-concurrency conflict, so concurrent submissions for the same
// user converge on the per-module maximum instead of clobbering each other.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/rampart/internal/adapters/kv"
	"github.com/okian/rampart/internal/domain/model"
	"github.com/okian/rampart/internal/domain/training"
	"github.com/okian/rampart/pkg/logger"
	"github.com/okian/rampart/pkg/metrics"
	"github.com/sethvargo/go-retry"
)

const keyPrefix = "progress:"

// Default concurrency-control settings.
const (
	defaultRetries    = 3
	defaultRetryDelay = 5 * time.Millisecond
)

// Tracker is the authoritative best-score store.
type Tracker struct {
	store      kv.Store
	retries    uint64
	retryDelay time.Duration
	log        logger.Logger
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithRetries bounds how often a conflicted submission is retried before the
// conflict surfaces to the caller.
func WithRetries(n int) Option {
	return func(t *Tracker) {
		if n >= 0 {
			t.retries = uint64(n)
		}
	}
}

// WithRetryDelay sets the pause between conflict retries.
func WithRetryDelay(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.retryDelay = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// New creates a Tracker backed by store.
func New(store kv.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:      store,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.Named("progress")
	}
	return t
}

// Get returns the user's current record. Absence of stored progress yields
// an empty record, never an error.
func (t *Tracker) Get(ctx context.Context, userID string) (model.Record, error) {
	rec, _, err := t.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Submit applies a best-score-wins merge for (moduleID, score) and reports
// whether the stored record changed. The returned record is the full,
// post-merge state either way.
func (t *Tracker) Submit(ctx context.Context, userID, moduleID string, score int) (model.Record, bool, error) {
	if err := training.ValidateSubmission(moduleID, score); err != nil {
		return nil, false, err
	}

	var (
		rec     model.Record
		updated bool
	)
	backoff := retry.WithMaxRetries(t.retries, retry.NewConstant(t.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		current, version, err := t.load(ctx, userID)
		if err != nil {
			return err
		}

		if best, ok := current[moduleID]; ok && score <= best {
			rec, updated = current, false
			return nil
		}

		next := current.Clone()
		next[moduleID] = score
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode progress for %q: %w", userID, err)
		}
		if err := t.store.CompareAndSwap(ctx, keyPrefix+userID, data, version); err != nil {
			if errors.Is(err, kv.ErrConflict) {
				metrics.RecordStoreRetry()
				t.log.Debug(ctx, "progress write conflicted, retrying",
					logger.String("user_id", userID),
					logger.String("module_id", moduleID),
				)
				return retry.RetryableError(err)
			}
			return fmt.Errorf("write progress for %q: %w", userID, err)
		}
		rec, updated = next, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return rec, updated, nil
}

// load reads and decodes a record plus its store version. A missing key is an
// empty record at version 0.
func (t *Tracker) load(ctx context.Context, userID string) (model.Record, int64, error) {
	v, found, err := t.store.Get(ctx, keyPrefix+userID)
	if err != nil {
		return nil, 0, fmt.Errorf("read progress for %q: %w", userID, err)
	}
	if !found {
		return model.Record{}, 0, nil
	}
	var rec model.Record
	if err := json.Unmarshal(v.Data, &rec); err != nil {
		return nil, 0, fmt.Errorf("decode progress for %q: %w", userID, err)
	}
	return rec, v.Version, nil
}
