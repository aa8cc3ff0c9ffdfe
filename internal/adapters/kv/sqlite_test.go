package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/rampart/internal/adapters/kv"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *kv.SQLiteStore {
	t.Helper()
	store, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	_, found, err := store.Get(ctx, "progress:u1")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "progress:u1", []byte(`{"quiz":40}`)))

	v, found, err := store.Get(ctx, "progress:u1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte(`{"quiz":40}`), v.Data)
	require.EqualValues(t, 1, v.Version)

	require.NoError(t, store.Set(ctx, "progress:u1", []byte(`{"quiz":90}`)))
	v, _, err = store.Get(ctx, "progress:u1")
	require.NoError(t, err)
	require.EqualValues(t, 2, v.Version)
}

func TestSQLiteStore_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	// Create-if-absent succeeds once, then conflicts.
	require.NoError(t, store.CompareAndSwap(ctx, "leaderboard", []byte(`[]`), 0))
	require.ErrorIs(t, store.CompareAndSwap(ctx, "leaderboard", []byte(`[]`), 0), kv.ErrConflict)

	// Stale version conflicts, current version wins.
	v, found, err := store.Get(ctx, "leaderboard")
	require.NoError(t, err)
	require.True(t, found)
	require.ErrorIs(t, store.CompareAndSwap(ctx, "leaderboard", []byte(`[1]`), v.Version+5), kv.ErrConflict)
	require.NoError(t, store.CompareAndSwap(ctx, "leaderboard", []byte(`[1]`), v.Version))

	after, _, err := store.Get(ctx, "leaderboard")
	require.NoError(t, err)
	require.Equal(t, []byte(`[1]`), after.Data)
	require.EqualValues(t, v.Version+1, after.Version)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := kv.OpenSQLite("  ")
	require.Error(t, err)
}
