// Package db is the PostgreSQL storage layer for posts and schedules.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// DB wraps a database/sql connection pool for PostgreSQL.
type DB struct {
	Pool *sql.DB
}

// New opens a connection pool and verifies it with a ping.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(5)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.Pool.Close()
}

// Migrate runs the database schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.Pool.ExecContext(ctx, migrationSQL)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// rowsAffected turns a zero-row update or delete into sql.ErrNoRows.
func rowsAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, sql.ErrNoRows)
	}
	return nil
}

const migrationSQL = `
CREATE TABLE IF NOT EXISTS schedules (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT '',
    content     TEXT NOT NULL DEFAULT '',
    platforms   TEXT[] NOT NULL DEFAULT '{}',
    media_urls  TEXT[] NOT NULL DEFAULT '{}',
    recurrence  JSONB NOT NULL,
    enabled     BOOLEAN NOT NULL DEFAULT true,
    next_run_at TIMESTAMPTZ,
    last_run_at TIMESTAMPTZ,
    run_count   INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_schedules_user_id ON schedules(user_id);
CREATE INDEX IF NOT EXISTS idx_schedules_due ON schedules(next_run_at) WHERE enabled;

CREATE TABLE IF NOT EXISTS posts (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL DEFAULT '',
    content      TEXT NOT NULL DEFAULT '',
    platforms    TEXT[] NOT NULL DEFAULT '{}',
    media_urls   TEXT[] NOT NULL DEFAULT '{}',
    scheduled_at TIMESTAMPTZ,
    status       TEXT NOT NULL DEFAULT 'draft',
    schedule_id  TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
CREATE INDEX IF NOT EXISTS idx_posts_scheduled_at ON posts(scheduled_at);
`
