// Package service wires the progress tracker and leaderboard board together
// and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/rampart/internal/adapters/kv"
	"github.com/okian/rampart/internal/auth"
	"github.com/okian/rampart/internal/config"
	"github.com/okian/rampart/internal/domain/model"
	"github.com/okian/rampart/internal/domain/progress"
	"github.com/okian/rampart/internal/domain/rank"
	"github.com/okian/rampart/pkg/logger"
	"github.com/okian/rampart/pkg/metrics"
)

// Service implements the API dependencies for the training platform core.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    kv.Store
	tracker  *progress.Tracker
	board    *rank.Board
	verifier *auth.Verifier

	// Configuration
	topN       int
	retries    int
	backend    string
	sqlitePath string
	authSecret []byte

	// State
	started bool

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTopN caps the leaderboard size.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithSubmitRetries bounds optimistic-concurrency retries.
func WithSubmitRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// WithStorage selects the key-value backend and, for sqlite, its file path.
func WithStorage(backend, sqlitePath string) Option {
	return func(s *Service) {
		if backend != "" {
			s.backend = backend
		}
		if sqlitePath != "" {
			s.sqlitePath = sqlitePath
		}
	}
}

// WithStore injects a pre-built store, overriding the backend selection.
// Intended for tests.
func WithStore(store kv.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithAuthSecret sets the shared HS256 secret for bearer verification.
func WithAuthSecret(secret []byte) Option {
	return func(s *Service) {
		if len(secret) > 0 {
			s.authSecret = secret
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		topN:    50,
		retries: 3,
		backend: config.StorageMemory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the storage backend and the core components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get()
	}

	if s.store == nil {
		switch s.backend {
		case config.StorageSQLite:
			store, err := kv.OpenSQLite(s.sqlitePath)
			if err != nil {
				return fmt.Errorf("open sqlite backend: %w", err)
			}
			s.store = store
			s.log.Info(ctx, "using sqlite store", logger.String("path", s.sqlitePath))
		default:
			s.store = kv.NewMemoryStore()
			s.log.Info(ctx, "using in-memory store")
		}
	}

	s.tracker = progress.New(s.store,
		progress.WithRetries(s.retries),
		progress.WithLogger(s.log.Named("progress")),
	)
	s.board = rank.New(s.store,
		rank.WithCapacity(s.topN),
		rank.WithRetries(s.retries),
		rank.WithLogger(s.log.Named("rank")),
	)
	s.verifier = auth.NewVerifier(s.authSecret)

	s.started = true
	s.log.Info(ctx, "service started",
		logger.String("storage", s.backend),
		logger.Int("top_n", s.topN),
		logger.Int("submit_retries", s.retries),
	)
	return nil
}

// Stop releases the storage backend.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Error(context.Background(), "closing store failed", logger.Error(err))
		}
	}
	s.started = false
	s.log.Info(context.Background(), "service stopped")
}

// VerifyBearer validates an Authorization header value and returns the
// identity it asserts.
func (s *Service) VerifyBearer(header string) (model.Identity, error) {
	return s.verifier.VerifyHeader(header)
}

// Progress returns the caller's current record; empty for new users.
func (s *Service) Progress(ctx context.Context, userID string) (model.Record, error) {
	return s.tracker.Get(ctx, userID)
}

// Submit merges a module completion into the caller's record and, when the
// best score improved, rewrites the leaderboard.
//
// A failed leaderboard rewrite after a successful progress write does not
// fail the submission: the table stays stale until the user's next improving
// submission. The gap is logged and counted.
func (s *Service) Submit(ctx context.Context, id model.Identity, moduleID string, score int) (model.Record, bool, error) {
	rec, updated, err := s.tracker.Submit(ctx, id.UserID, moduleID, score)
	if err != nil {
		return nil, false, err
	}
	if !updated {
		metrics.RecordSubmissionIgnored()
		return rec, false, nil
	}

	metrics.RecordSubmissionAccepted()
	if err := s.board.Recompute(ctx, id, rec); err != nil {
		metrics.RecordRecomputeError()
		s.log.Error(ctx, "leaderboard recompute failed; table stale until next improvement",
			logger.String("user_id", id.UserID),
			logger.Error(err),
		)
	}
	return rec, true, nil
}

// Leaderboard returns the current top-N entries, sorted descending.
func (s *Service) Leaderboard(ctx context.Context) ([]model.Entry, error) {
	return s.board.Top(ctx)
}

// GetStats returns service statistics for the stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"storage":        s.backend,
		"top_n":          s.topN,
		"submit_retries": s.retries,
	}
	if s.started {
		if entries, err := s.board.Top(context.Background()); err == nil {
			stats["leaderboard_size"] = len(entries)
			metrics.UpdateLeaderboardSize(len(entries))
		}
	}
	return stats
}
