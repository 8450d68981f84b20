package database

import (
	"context"
	"fmt"
	"time"

	"event-registry/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitDatabase opens a pgx pool and verifies it with a ping before returning.
func InitDatabase(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s timezone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id            BIGINT PRIMARY KEY CHECK (id > 0),
	name          TEXT NOT NULL CHECK (name <> ''),
	event_date    BIGINT NOT NULL,
	speakers      TEXT[] NOT NULL DEFAULT '{}',
	location_name TEXT NOT NULL CHECK (location_name <> ''),
	duration      BIGINT NOT NULL,
	end_date      BIGINT NOT NULL,
	attendees     BIGINT NOT NULL DEFAULT 0 CHECK (attendees >= 0),
	is_completed  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS event_registrations (
	event_id      BIGINT NOT NULL REFERENCES events (id),
	address       TEXT NOT NULL,
	registered_at BIGINT NOT NULL,
	PRIMARY KEY (event_id, address)
);
`

// Migrate creates the registry tables if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
