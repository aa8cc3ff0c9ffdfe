package kv

import (
	"context"
	"sync"
	"time"

	"github.com/okian/rampart/pkg/metrics"
)

type memoryEntry struct {
	data    []byte
	version int64
}

// MemoryStore implements Store with a mutex-guarded map. It is the default
// backend for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]memoryEntry
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry)}
}

// Get returns the value for key, or found=false when absent.
func (s *MemoryStore) Get(ctx context.Context, key string) (Value, bool, error) {
	defer observe("get", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		metrics.RecordStoreOpError("get")
		return Value{}, false, ErrClosed
	}
	e, ok := s.items[key]
	if !ok {
		return Value{}, false, nil
	}
	// Hand out a copy so callers cannot alias the stored slice.
	data := make([]byte, len(e.data))
	copy(data, e.data)
	return Value{Data: data, Version: e.version}, true, nil
}

// Set writes data unconditionally.
func (s *MemoryStore) Set(ctx context.Context, key string, data []byte) error {
	defer observe("set", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		metrics.RecordStoreOpError("set")
		return ErrClosed
	}
	s.items[key] = memoryEntry{data: cloneBytes(data), version: s.items[key].version + 1}
	return nil
}

// CompareAndSwap writes data only if the stored version matches.
func (s *MemoryStore) CompareAndSwap(ctx context.Context, key string, data []byte, version int64) error {
	defer observe("cas", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		metrics.RecordStoreOpError("cas")
		return ErrClosed
	}
	current, ok := s.items[key]
	switch {
	case !ok && version != 0:
		metrics.RecordStoreConflict()
		return ErrConflict
	case ok && current.version != version:
		metrics.RecordStoreConflict()
		return ErrConflict
	}
	s.items[key] = memoryEntry{data: cloneBytes(data), version: version + 1}
	return nil
}

// Close marks the store closed; subsequent operations fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func observe(op string, start time.Time) {
	metrics.RecordStoreOpLatency(op, float64(time.Since(start).Microseconds())/1000.0)
}
