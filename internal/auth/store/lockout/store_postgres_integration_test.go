//go:build integration

package lockout_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline/internal/auth/store/lockout"
	"lifeline/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	store := lockout.NewPostgres(pg.DB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	window := 15 * time.Minute

	t.Run("concurrent failures are all counted", func(t *testing.T) {
		key := "ada|" + uuid.NewString()
		const goroutines = 10
		var wg sync.WaitGroup
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.RecordFailure(ctx, key, now, window)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		record, err := store.Get(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, goroutines, record.FailureCount)
	})

	t.Run("stale window and expired lock start over", func(t *testing.T) {
		key := "bola|" + uuid.NewString()
		_, err := store.RecordFailure(ctx, key, now, window)
		require.NoError(t, err)
		record, err := store.RecordFailure(ctx, key, now.Add(window+time.Second), window)
		require.NoError(t, err)
		assert.Equal(t, 1, record.FailureCount)

		later := now.Add(window + 2*time.Second)
		require.NoError(t, store.Lock(ctx, key, later.Add(time.Minute)))
		record, err = store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, record.IsLockedAt(later))

		record, err = store.RecordFailure(ctx, key, later.Add(2*time.Minute), window)
		require.NoError(t, err)
		assert.Equal(t, 1, record.FailureCount)
		assert.Nil(t, record.LockedUntil)
	})

	t.Run("clear removes the row", func(t *testing.T) {
		key := "chidi|" + uuid.NewString()
		_, err := store.RecordFailure(ctx, key, now, window)
		require.NoError(t, err)
		require.NoError(t, store.Clear(ctx, key))
		record, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}
