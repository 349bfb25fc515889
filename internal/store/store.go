// ABOUTME: KVStore interface and entry types for luxriel persistence
// ABOUTME: Defines the revisioned key-value contract the override store is built on

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested key does not exist
var ErrNotFound = errors.New("not found")

// ErrStaleRevision is returned by PutValueIfRevision when the stored
// revision no longer matches the caller's expectation
var ErrStaleRevision = errors.New("stale revision")

// Entry is one stored value with its revision stamp.
// Revision starts at 1 on first write and increases by one on every write.
type Entry struct {
	Key       string
	Value     []byte
	Revision  int64
	UpdatedAt time.Time
}

// KVStore defines revisioned key-value persistence
type KVStore interface {
	// GetValue returns the entry for key, or ErrNotFound.
	GetValue(ctx context.Context, key string) (*Entry, error)

	// PutValue replaces the value under key unconditionally (last writer
	// wins) and returns the new revision.
	PutValue(ctx context.Context, key string, value []byte) (int64, error)

	// PutValueIfRevision replaces the value only if the stored revision
	// equals expected. expected == 0 means "key must not exist yet".
	// Returns ErrStaleRevision on mismatch.
	PutValueIfRevision(ctx context.Context, key string, value []byte, expected int64) (int64, error)

	// DeleteValue removes key. Deleting a missing key is not an error.
	DeleteValue(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}
