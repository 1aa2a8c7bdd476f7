package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/engine"
)

// SQLiteStore persists snapshots and custom energy types in a SQLite file.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens a SQLite store at path and applies embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := runSQLiteMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load returns the snapshot for key or ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context, key string) (*engine.Snapshot, error) {
	var data string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT snapshot FROM profiles WHERE profile_key = ?`, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loading %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("query profile %q: %w", key, err)
	}
	return engine.DecodeSnapshot([]byte(data))
}

// Save upserts the snapshot for key.
func (s *SQLiteStore) Save(ctx context.Context, key string, snap *engine.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("save profile %q: %w", key, err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO profiles (profile_key, snapshot, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(profile_key) DO UPDATE SET
    snapshot = excluded.snapshot,
    updated_at = excluded.updated_at
`, key, string(data), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert profile %q: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot for key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM profiles WHERE profile_key = ?`, key); err != nil {
		return fmt.Errorf("delete profile %q: %w", key, err)
	}
	return nil
}

// LoadCustomTypes implements energy.CustomTypeSource.
func (s *SQLiteStore) LoadCustomTypes(ctx context.Context) ([]energy.TypeDefinition, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT type_id, name, color, formula FROM energy_types ORDER BY created_at, type_id`)
	if err != nil {
		return nil, fmt.Errorf("query energy types: %w", err)
	}
	defer rows.Close()

	var defs []energy.TypeDefinition
	for rows.Next() {
		var d energy.TypeDefinition
		if err := rows.Scan(&d.ID, &d.Name, &d.Color, &d.Formula); err != nil {
			return nil, fmt.Errorf("scan energy type: %w", err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate energy types: %w", err)
	}
	return defs, nil
}

// SaveCustomType upserts a custom energy type.
func (s *SQLiteStore) SaveCustomType(ctx context.Context, def energy.TypeDefinition) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO energy_types (type_id, name, color, formula, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(type_id) DO UPDATE SET
    name = excluded.name,
    color = excluded.color,
    formula = excluded.formula
`, def.ID, def.Name, def.Color, def.Formula, time.Now().UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("upsert energy type %q: %w", def.ID, err)
	}
	return nil
}

// DeleteCustomType removes a custom energy type.
func (s *SQLiteStore) DeleteCustomType(ctx context.Context, id string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM energy_types WHERE type_id = ?`, id); err != nil {
		return fmt.Errorf("delete energy type %q: %w", id, err)
	}
	return nil
}
