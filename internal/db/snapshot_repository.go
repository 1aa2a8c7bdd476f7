package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/powerlevel/internal/engine"
)

// SnapshotRepository stores snapshots in PostgreSQL as JSONB.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load returns the snapshot for key or ErrNotFound.
func (r *SnapshotRepository) Load(ctx context.Context, key string) (*engine.Snapshot, error) {
	var data []byte
	err := r.db.QueryRow(ctx,
		`SELECT snapshot FROM profiles WHERE profile_key = $1`, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loading %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("querying profile %q: %w", key, err)
	}
	return engine.DecodeSnapshot(data)
}

// Save upserts the snapshot for key.
func (r *SnapshotRepository) Save(ctx context.Context, key string, snap *engine.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("saving profile %q: %w", key, err)
	}
	query := `
		INSERT INTO profiles (profile_key, snapshot, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (profile_key)
		DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = now()
	`
	if _, err := r.db.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("upserting profile %q: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot for key.
func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE profile_key = $1`, key); err != nil {
		return fmt.Errorf("deleting profile %q: %w", key, err)
	}
	return nil
}
