// ABOUTME: Content override store: the single source of truth for page content
// ABOUTME: Loads, saves, and field-sets the tree, then notifies every subscriber

package overrides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lavriel789-crypto/luxriel/internal/broadcast"
	"github.com/lavriel789-crypto/luxriel/internal/content"
	"github.com/lavriel789-crypto/luxriel/internal/store"
)

// StorageKey is the one key the serialized tree lives under.
const StorageKey = "luxriel_terua_config"

// changeTopic is the broadcaster topic for tree changes.
const changeTopic = "config"

// ErrStaleRevision is returned by SaveIfRevision when another writer
// published after the caller's snapshot was taken.
var ErrStaleRevision = store.ErrStaleRevision

// Change is delivered to subscribers after every successful write. It means
// "re-read the store"; Revision is informational only.
type Change struct {
	Revision int64
}

// Field is one path/value pair for SetFields.
type Field struct {
	Path  string
	Value string
}

// Store owns the content tree. Every mutation goes through it.
type Store struct {
	kv      store.KVStore
	mu      sync.Mutex // serializes read-modify-write
	changes *broadcast.Broadcaster[Change]
	logger  *slog.Logger
}

// New creates a Store over the given key-value backend. Pass nil logger for
// default.
func New(kv store.KVStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:      kv,
		changes: broadcast.New[Change](logger),
		logger:  logger.With("component", "overrides"),
	}
}

// Load returns a copy of the persisted tree. Missing, unreadable, or
// malformed data yields an empty tree; the failure is logged, never returned.
func (s *Store) Load(ctx context.Context) content.Tree {
	tree, _ := s.Snapshot(ctx)
	return tree
}

// Snapshot returns the persisted tree together with its revision. The
// revision is 0 when nothing has been written yet.
func (s *Store) Snapshot(ctx context.Context) (content.Tree, int64) {
	entry, err := s.kv.GetValue(ctx, StorageKey)
	if errors.Is(err, store.ErrNotFound) {
		return content.Tree{}, 0
	}
	if err != nil {
		s.logger.Warn("reading content tree failed, using empty tree", "error", err)
		return content.Tree{}, 0
	}

	tree, err := content.Decode(entry.Value)
	if err != nil {
		s.logger.Warn("persisted content tree is malformed, using empty tree",
			"error", err,
			"revision", entry.Revision)
		return content.Tree{}, entry.Revision
	}
	return tree, entry.Revision
}

// Revision returns the current persisted revision, or 0.
func (s *Store) Revision(ctx context.Context) int64 {
	_, rev := s.Snapshot(ctx)
	return rev
}

// Save replaces the whole persisted tree and returns the revision it wrote.
// Last writer wins.
func (s *Store) Save(ctx context.Context, tree content.Tree) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, tree, -1)
}

// SaveIfRevision replaces the whole tree only when the persisted revision is
// still expected, and returns the revision it wrote. Returns
// ErrStaleRevision otherwise.
func (s *Store) SaveIfRevision(ctx context.Context, tree content.Tree, expected int64) (int64, error) {
	if expected < 0 {
		return 0, fmt.Errorf("negative revision %d", expected)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, tree, expected)
}

// SetField writes one value at path. After it returns, Load observes the
// value and every subscriber has been notified.
func (s *Store) SetField(ctx context.Context, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree := s.Load(ctx)
	if err := content.Set(tree, path, value); err != nil {
		return fmt.Errorf("setting %q: %w", path, err)
	}
	_, err := s.write(ctx, tree, -1)
	return err
}

// SetFields writes several values in one persisted write and one
// notification. Either every field is applied or none is.
func (s *Store) SetFields(ctx context.Context, fields ...Field) error {
	if len(fields) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tree := s.Load(ctx)
	for _, f := range fields {
		if err := content.Set(tree, f.Path, f.Value); err != nil {
			return fmt.Errorf("setting %q: %w", f.Path, err)
		}
	}
	_, err := s.write(ctx, tree, -1)
	return err
}

// Subscribe registers for change notifications. The subscription ends when
// ctx is cancelled or Unsubscribe is called.
func (s *Store) Subscribe(ctx context.Context) (<-chan Change, string) {
	return s.changes.Subscribe(ctx, changeTopic)
}

// Unsubscribe ends a subscription and closes its channel.
func (s *Store) Unsubscribe(subID string) {
	s.changes.Unsubscribe(changeTopic, subID)
}

// Close closes every subscription channel. The store stays readable.
func (s *Store) Close() {
	s.changes.Close()
}

// write persists tree, broadcasts, and returns the new revision. expected < 0
// means unconditional. Callers must hold mu.
func (s *Store) write(ctx context.Context, tree content.Tree, expected int64) (int64, error) {
	data, err := tree.Encode()
	if err != nil {
		return 0, err
	}

	var rev int64
	if expected < 0 {
		rev, err = s.kv.PutValue(ctx, StorageKey, data)
	} else {
		rev, err = s.kv.PutValueIfRevision(ctx, StorageKey, data, expected)
	}
	if err != nil {
		if errors.Is(err, store.ErrStaleRevision) {
			return 0, err
		}
		return 0, fmt.Errorf("persisting content tree: %w", err)
	}

	s.logger.Debug("content tree saved", "revision", rev, "bytes", len(data))
	s.changes.Publish(changeTopic, Change{Revision: rev})
	return rev, nil
}
