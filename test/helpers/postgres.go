// test/helpers/postgres.go
package helpers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/shopcart/internal/adapters/db"
	"github.com/ammerola/shopcart/internal/pkg/config"
)

// TestDB represents a migrated Postgres running in Docker
type TestDB struct {
	DB       *sql.DB
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   config.PostgresConfig
}

// SetupTestDB starts Postgres in a container and applies the migrations
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_cart",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	cfg := LoadTestConfig().Postgres
	cfg.Port = resource.GetPort("5432/tcp")

	ctx := context.Background()
	var sqlDB *sql.DB
	err = pool.Retry(func() error {
		var err error
		sqlDB, err = db.Open(ctx, cfg, TestLogger())
		return err
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	t.Cleanup(func() {
		sqlDB.Close()
	})

	err = db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
		DatabaseURL: db.DSN(cfg),
	}, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		DB:       sqlDB,
		Resource: resource,
		Pool:     pool,
		Config:   cfg,
	}
}

// TruncateSnapshots clears the snapshot table
func TruncateSnapshots(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	_, err := sqlDB.Exec("TRUNCATE TABLE " + db.DefaultTable)
	require.NoError(t, err)
}
