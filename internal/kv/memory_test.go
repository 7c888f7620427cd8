package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "k", "v1"))
	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	require.NoError(t, store.Set(ctx, "k", "v2"))
	value, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting an absent key is not an error
	require.NoError(t, store.Delete(ctx, "k"))
}

func TestMemoryStoreListKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "recipe:2", "b"))
	require.NoError(t, store.Set(ctx, "recipe:1", "a"))
	require.NoError(t, store.Set(ctx, "shopping-list", "c"))

	keys, err := store.ListKeys(ctx, "recipe:")
	require.NoError(t, err)
	assert.Equal(t, []string{"recipe:1", "recipe:2"}, keys)

	keys, err = store.ListKeys(ctx, "none:")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
