// ABOUTME: Shared KVStore contract tests run against every implementation
// ABOUTME: Verifies not-found, upsert revisions, conditional writes, and deletes

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKVContract(t *testing.T, newStore func(t *testing.T) KVStore) {
	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetValue(t.Context(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put bumps revision", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		rev, err := s.PutValue(ctx, "k", []byte("one"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), rev)

		rev, err = s.PutValue(ctx, "k", []byte("two"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), rev)

		entry, err := s.GetValue(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "k", entry.Key)
		assert.Equal(t, "two", string(entry.Value))
		assert.Equal(t, int64(2), entry.Revision)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		_, err := s.PutValue(ctx, "a", []byte("A"))
		require.NoError(t, err)
		_, err = s.PutValue(ctx, "b", []byte("B"))
		require.NoError(t, err)

		a, err := s.GetValue(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "A", string(a.Value))
		assert.Equal(t, int64(1), a.Revision)
	})

	t.Run("conditional create", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		rev, err := s.PutValueIfRevision(ctx, "k", []byte("first"), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rev)

		_, err = s.PutValueIfRevision(ctx, "k", []byte("again"), 0)
		assert.ErrorIs(t, err, ErrStaleRevision)

		entry, err := s.GetValue(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "first", string(entry.Value))
	})

	t.Run("conditional update", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		_, err := s.PutValue(ctx, "k", []byte("v1"))
		require.NoError(t, err)

		rev, err := s.PutValueIfRevision(ctx, "k", []byte("v2"), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), rev)

		_, err = s.PutValueIfRevision(ctx, "k", []byte("stale"), 1)
		assert.ErrorIs(t, err, ErrStaleRevision)

		_, err = s.PutValueIfRevision(ctx, "missing", []byte("x"), 3)
		assert.ErrorIs(t, err, ErrStaleRevision)

		entry, err := s.GetValue(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", string(entry.Value))
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		_, err := s.PutValue(ctx, "k", []byte("v"))
		require.NoError(t, err)
		require.NoError(t, s.DeleteValue(ctx, "k"))
		require.NoError(t, s.DeleteValue(ctx, "k"))

		_, err = s.GetValue(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
