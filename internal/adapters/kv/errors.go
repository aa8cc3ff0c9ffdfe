package kv

import "errors"

// Sentinel kinds for storage errors.
var (
	// ErrConflict reports a CompareAndSwap that lost a race with another writer.
	ErrConflict = errors.New("kv: version conflict")

	// ErrClosed reports use of a store after Close.
	ErrClosed = errors.New("kv: store closed")
)
