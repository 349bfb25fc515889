// ABOUTME: SQLite implementation of the KVStore interface using modernc.org/sqlite
// ABOUTME: Provides revisioned key-value persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the KVStore interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection keeps :memory: databases shared and serializes
	// writers, which is all a single-tree store needs.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			revision   INTEGER NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	// Databases written before revision stamps existed lack the column.
	// SQLite doesn't support ADD COLUMN IF NOT EXISTS, so we check first
	migrations := []struct {
		check  string // Query to check if migration is needed
		apply  string // Query to apply the migration
		column string // Column name for logging
	}{
		{
			check:  `SELECT 1 FROM pragma_table_info('kv_entries') WHERE name = 'revision'`,
			apply:  `ALTER TABLE kv_entries ADD COLUMN revision INTEGER NOT NULL DEFAULT 1`,
			column: "revision",
		},
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRow(m.check).Scan(&exists)
		if err == nil {
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("adding %s column to kv_entries: %w", m.column, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", "kv_entries")
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// GetValue retrieves an entry by key.
// Returns ErrNotFound if the key doesn't exist.
func (s *SQLiteStore) GetValue(ctx context.Context, key string) (*Entry, error) {
	query := `
		SELECT key, value, revision, updated_at
		FROM kv_entries
		WHERE key = ?
	`

	var entry Entry
	var updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&entry.Key,
		&entry.Value,
		&entry.Revision,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}

	entry.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &entry, nil
}

// PutValue inserts or replaces the value under key and bumps its revision.
func (s *SQLiteStore) PutValue(ctx context.Context, key string, value []byte) (int64, error) {
	query := `
		INSERT INTO kv_entries (key, value, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = kv_entries.revision + 1,
			updated_at = excluded.updated_at
		RETURNING revision
	`

	var revision int64
	err := s.db.QueryRowContext(ctx, query,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339),
	).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("upserting entry: %w", err)
	}

	s.logger.Debug("stored entry", "key", key, "revision", revision, "bytes", len(value))
	return revision, nil
}

// PutValueIfRevision writes value only when the stored revision equals
// expected. Returns ErrStaleRevision otherwise.
func (s *SQLiteStore) PutValueIfRevision(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var (
		result sql.Result
		err    error
	)
	if expected == 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO kv_entries (key, value, revision, updated_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(key) DO NOTHING
		`, key, value, now)
	} else {
		result, err = s.db.ExecContext(ctx, `
			UPDATE kv_entries
			SET value = ?, revision = revision + 1, updated_at = ?
			WHERE key = ? AND revision = ?
		`, value, now, key, expected)
	}
	if err != nil {
		return 0, fmt.Errorf("conditional write: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		s.logger.Debug("rejected stale write", "key", key, "expected", expected)
		return 0, ErrStaleRevision
	}

	s.logger.Debug("stored entry", "key", key, "revision", expected+1, "bytes", len(value))
	return expected + 1, nil
}

// DeleteValue removes an entry. Missing keys are ignored.
func (s *SQLiteStore) DeleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

// Ensure SQLiteStore implements KVStore
var _ KVStore = (*SQLiteStore)(nil)
