package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new reference as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "ref-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew, "new reference should return true")
	})

	t.Run("returns false for already processed reference", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "ref-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "ref-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew, "already processed reference should return false")
	})

	t.Run("allows reapplying after expiration", func(t *testing.T) {
		ttl := 10 * time.Millisecond

		isNew, err := store.MarkProcessed(ctx, "ref-3", ttl)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "ref-3", ttl)
		require.NoError(t, err)
		assert.True(t, isNew, "expired reference should be reapplicable")
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns false for unknown reference", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "unknown-ref")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("returns true for processed reference", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "processed-ref", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "processed-ref")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("returns false after expiration", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "short-ref", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "short-ref")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	// Close is idempotent
	require.NoError(t, store.Close())
}
