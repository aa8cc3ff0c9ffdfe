// Package kv defines the key-value storage contract consumed by the core and
// its in-memory and sqlite implementations.
//
// Values carry a monotonically increasing version so read-modify-write
// callers can use CompareAndSwap for optimistic concurrency. Version 0 on a
// swap means "create only if the key is still absent".
package kv

import "context"

// Value is a stored blob plus its current version.
type Value struct {
	Data    []byte
	Version int64
}

// Store provides read/write access to opaque values by key.
type Store interface {
	// Get returns the value for key. The boolean is false when the key is
	// absent; absence is not an error.
	Get(ctx context.Context, key string) (Value, bool, error)

	// Set writes data unconditionally, bumping the version.
	Set(ctx context.Context, key string, data []byte) error

	// CompareAndSwap writes data only if the stored version still equals
	// version. It returns ErrConflict when another writer got there first.
	CompareAndSwap(ctx context.Context, key string, data []byte, version int64) error

	// Close releases backend resources.
	Close() error
}
