// SPDX-License-Identifier: LGPL-3.0-or-later

// Package postgres provides a durable persistence.Adapter backed by
// PostgreSQL, for processes that need the wallet-signature/session-key
// slots to survive restarts instead of living in-memory.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sage-x-project/lit-coordinator/persistence"
)

// Config holds the PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c Config) connString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Adapter implements persistence.Adapter over a single key/value table.
type Adapter struct {
	pool *pgxpool.Pool
}

// NewAdapter connects to PostgreSQL and ensures the backing table exists.
func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	pool, err := pgxpool.New(ctx, cfg.connString())
	if err != nil {
		return nil, fmt.Errorf("persistence/postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("persistence/postgres: ping: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS lit_coordinator_kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("persistence/postgres: create table: %w", err)
	}

	return &Adapter{pool: pool}, nil
}

func (a *Adapter) Get(key string) (string, error) {
	ctx := context.Background()
	var value string
	err := a.pool.QueryRow(ctx, `SELECT value FROM lit_coordinator_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", persistence.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("persistence/postgres: get %q: %w", key, err)
	}
	return value, nil
}

func (a *Adapter) Set(key, value string) error {
	ctx := context.Background()
	_, err := a.pool.Exec(ctx, `
		INSERT INTO lit_coordinator_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("persistence/postgres: set %q: %w", key, err)
	}
	return nil
}

func (a *Adapter) Remove(key string) error {
	ctx := context.Background()
	if _, err := a.pool.Exec(ctx, `DELETE FROM lit_coordinator_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("persistence/postgres: remove %q: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (a *Adapter) Close() {
	a.pool.Close()
}

var _ persistence.Adapter = (*Adapter)(nil)
