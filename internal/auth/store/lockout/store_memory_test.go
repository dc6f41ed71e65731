package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	window := 15 * time.Minute
	store := NewInMemoryStore()

	t.Run("unknown key has no record", func(t *testing.T) {
		record, err := store.Get(ctx, "nobody|192.0.2.1")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("failures inside the window accumulate", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			record, err := store.RecordFailure(ctx, "ada|192.0.2.1", now.Add(time.Duration(i)*time.Minute), window)
			require.NoError(t, err)
			assert.Equal(t, i, record.FailureCount)
		}
	})

	t.Run("failure after the window starts over", func(t *testing.T) {
		record, err := store.RecordFailure(ctx, "ada|192.0.2.1", now.Add(3*time.Minute+window), window)
		require.NoError(t, err)
		assert.Equal(t, 1, record.FailureCount)
	})

	t.Run("expired lock starts over", func(t *testing.T) {
		key := "bola|192.0.2.1"
		_, err := store.RecordFailure(ctx, key, now, window)
		require.NoError(t, err)
		require.NoError(t, store.Lock(ctx, key, now.Add(time.Minute)))

		record, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, record.IsLockedAt(now))

		record, err = store.RecordFailure(ctx, key, now.Add(2*time.Minute), window)
		require.NoError(t, err)
		assert.Equal(t, 1, record.FailureCount)
		assert.Nil(t, record.LockedUntil)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		key := "chidi|192.0.2.1"
		record, err := store.RecordFailure(ctx, key, now, window)
		require.NoError(t, err)
		record.FailureCount = 99

		again, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 1, again.FailureCount)
	})

	t.Run("clear forgets the key", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, "chidi|192.0.2.1"))
		record, err := store.Get(ctx, "chidi|192.0.2.1")
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}
