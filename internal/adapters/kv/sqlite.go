package kv

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/rampart/pkg/metrics"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	k TEXT PRIMARY KEY,
	v BLOB NOT NULL,
	version INTEGER NOT NULL DEFAULT 1
);
`

// SQLiteStore implements Store over a single SQLite file. Versioned rows make
// CompareAndSwap a plain conditional UPDATE, which holds across process
// instances sharing the file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the store at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the value for key, or found=false when absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) (Value, bool, error) {
	defer observe("get", time.Now())

	var v Value
	row := s.db.QueryRowContext(ctx, `SELECT v, version FROM kv WHERE k = ?`, key)
	if err := row.Scan(&v.Data, &v.Version); err != nil {
		if err == sql.ErrNoRows {
			return Value{}, false, nil
		}
		metrics.RecordStoreOpError("get")
		return Value{}, false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return v, true, nil
}

// Set writes data unconditionally, bumping the version on replace.
func (s *SQLiteStore) Set(ctx context.Context, key string, data []byte) error {
	defer observe("set", time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (k, v, version) VALUES (?, ?, 1)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, version = kv.version + 1`,
		key, data)
	if err != nil {
		metrics.RecordStoreOpError("set")
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// CompareAndSwap writes data only if the stored version matches. Version 0
// inserts and fails with ErrConflict if the key appeared in the meantime.
func (s *SQLiteStore) CompareAndSwap(ctx context.Context, key string, data []byte, version int64) error {
	defer observe("cas", time.Now())

	if version == 0 {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO kv (k, v, version) VALUES (?, ?, 1)`, key, data)
		if err != nil {
			// UNIQUE violation means another writer created the key first.
			if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "constraint") {
				metrics.RecordStoreConflict()
				return ErrConflict
			}
			metrics.RecordStoreOpError("cas")
			return fmt.Errorf("kv cas insert %q: %w", key, err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE kv SET v = ?, version = version + 1 WHERE k = ? AND version = ?`,
		data, key, version)
	if err != nil {
		metrics.RecordStoreOpError("cas")
		return fmt.Errorf("kv cas %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		metrics.RecordStoreOpError("cas")
		return fmt.Errorf("kv cas %q: %w", key, err)
	}
	if n == 0 {
		metrics.RecordStoreConflict()
		return ErrConflict
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
