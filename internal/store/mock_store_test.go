// ABOUTME: Tests for MockStore
// ABOUTME: Runs the shared contract and checks failure injection and copy isolation

package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_KVContract(t *testing.T) {
	testKVContract(t, func(t *testing.T) KVStore {
		return NewMockStore()
	})
}

func TestMockStore_FailWrites(t *testing.T) {
	m := NewMockStore()
	ctx := t.Context()
	boom := errors.New("disk full")

	m.FailWrites(boom)
	_, err := m.PutValue(ctx, "k", []byte("v"))
	assert.ErrorIs(t, err, boom)
	_, err = m.PutValueIfRevision(ctx, "k", []byte("v"), 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Writes())

	m.FailWrites(nil)
	_, err = m.PutValue(ctx, "k", []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Writes())
}

func TestMockStore_ReturnsCopies(t *testing.T) {
	m := NewMockStore()
	ctx := t.Context()

	value := []byte("original")
	_, err := m.PutValue(ctx, "k", value)
	require.NoError(t, err)
	value[0] = 'X'

	entry, err := m.GetValue(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(entry.Value))

	entry.Value[0] = 'Y'
	again, err := m.GetValue(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again.Value))
}
