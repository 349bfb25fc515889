// Package store provides revisioned key-value persistence for luxriel.
//
// # Architecture
//
// KVStore is the only interface. It stores opaque byte values under string
// keys, each with a revision stamp that starts at 1 and grows by one on
// every write. The override layer keeps the whole content tree under a
// single key; nothing else in this package knows what the bytes mean.
//
// Two implementations exist:
//
//   - SQLiteStore: modernc.org/sqlite, one table
//   - MockStore: in-memory, with write-failure injection for tests
//
// # Schema
//
//	CREATE TABLE kv_entries (
//		key        TEXT PRIMARY KEY,
//		value      BLOB NOT NULL,
//		revision   INTEGER NOT NULL DEFAULT 1,
//		updated_at TEXT NOT NULL
//	);
//
// Timestamps are stored as RFC3339 text in UTC.
//
// # SQLite Configuration
//
//	PRAGMA journal_mode=WAL;
//
// Database file locations:
//
//   - Production: /var/lib/luxriel/luxriel.db
//   - Development: ~/.local/share/luxriel/luxriel.db
//   - Testing: a file under t.TempDir()
//
// # Error Handling
//
//   - ErrNotFound: key does not exist
//   - ErrStaleRevision: conditional write lost a race
//
// All methods accept context.Context for cancellation support.
//
// # Migrations
//
// runMigrations adds columns missing from databases created by older
// builds. Each migration checks pragma_table_info first, so it is safe to
// run on every start.
package store
