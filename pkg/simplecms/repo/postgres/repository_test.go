package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/repotest"
)

// setupTestPool connects to TEST_DATABASE_URL and creates the schema.
// Tests are skipped when the variable is not set.
func setupTestPool(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.NewWithPool(pool).Migrate(ctx))
	return pool
}

func TestPostgresRepository(t *testing.T) {
	pool := setupTestPool(t)

	repotest.Run(t, func(t *testing.T) simplecms.Repository {
		_, err := pool.Exec(context.Background(),
			`TRUNCATE products, blogs, home_logos, home_page, contact_info`)
		require.NoError(t, err)
		return postgres.NewWithPool(pool)
	})
}

func TestPostgresRepository_MigrateIsIdempotent(t *testing.T) {
	pool := setupTestPool(t)
	require.NoError(t, postgres.NewWithPool(pool).Migrate(context.Background()))
}
