//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbooster/internal/database"
	"workbooster/internal/database/dbtest"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	applied, err := database.RunMigrations(ctx, pool)
	require.NoError(t, err)
	assert.Zero(t, applied)
	require.NoError(t, database.CheckCurrent(ctx, pool))

	states, err := database.MigrationStatus(ctx, pool)
	require.NoError(t, err)
	require.Len(t, states, database.LatestVersion())
	for _, s := range states {
		assert.NotNil(t, s.AppliedAt, s.Name)
	}

	var stages int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM stages").Scan(&stages))
	assert.Equal(t, 8, stages)

	var orphanStages int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT count(*) FROM stages s WHERE NOT EXISTS (SELECT 1 FROM statuses st WHERE st.stage_id = s.id)").Scan(&orphanStages))
	assert.Zero(t, orphanStages, "every stage needs at least one status")
}

func TestCheckCurrentDetectsMissingVersion(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", database.LatestVersion())
	require.NoError(t, err)
	assert.ErrorIs(t, database.CheckCurrent(ctx, pool), database.ErrSchemaOutdated)
}
