package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the PostgreSQL backend shared by SnapshotRepository and
// EnergyTypeRepository.
type DB struct {
	pool *pgxpool.Pool
}

// New opens a pool for dsn and verifies it with a ping.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close releases every pooled connection.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the pool the repositories are built over.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
