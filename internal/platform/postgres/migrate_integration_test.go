//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline/internal/platform/postgres"
	"lifeline/pkg/testutil/containers"
)

func TestMigrateIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	ctx := context.Background()

	applied, err := postgres.Migrate(ctx, pg.DB)
	require.NoError(t, err)
	assert.Empty(t, applied, "container is already migrated")

	version, err := postgres.SchemaVersion(ctx, pg.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	var outbox bool
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'audit_outbox')`).Scan(&outbox))
	assert.True(t, outbox)
}
