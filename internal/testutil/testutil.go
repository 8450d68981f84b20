// Package testutil connects integration tests to the test Postgres and Redis
// instances described by config.LoadTestConfig. Tests skip when a backend is
// not reachable.
package testutil

import (
	"context"
	"testing"

	"event-registry/config"
	"event-registry/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Postgres returns a migrated, empty test database.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg := config.LoadTestConfig()

	ctx := context.Background()
	pool, err := database.InitDatabase(ctx, &cfg.Database)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	TruncatePostgres(t, pool)

	return pool
}

// TruncatePostgres empties the registry tables, keeping the schema.
func TruncatePostgres(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE event_registrations, events CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// Redis returns a client on the flushed logical database db. Packages that run
// concurrently under go test should use distinct db numbers.
func Redis(t *testing.T, db int) *redis.Client {
	t.Helper()
	cfg := config.LoadTestConfig()
	cfg.Redis.DB = db

	rdb, err := database.InitRedis(context.Background(), &cfg.Redis)
	if err != nil {
		t.Skipf("test redis unavailable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to flush redis: %v", err)
	}
	return rdb
}
