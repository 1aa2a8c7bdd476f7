package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/powerlevel/internal/config"
	"github.com/udisondev/powerlevel/internal/db"
)

type store interface {
	db.SnapshotStore
	db.CustomTypeStore
}

type pgStore struct {
	*db.SnapshotRepository
	*db.EnergyTypeRepository
}

// openStore opens the configured storage backend. The returned func releases it.
func openStore(ctx context.Context, cfg config.StorageConfig) (store, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return db.NewMemoryStore(), func() {}, nil
	case config.DriverSQLite:
		s, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		slog.Info("sqlite store opened", "path", cfg.SQLitePath)
		return s, func() { _ = s.Close() }, nil
	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("database connected")
		return pgStore{
			SnapshotRepository:   db.NewSnapshotRepository(database.Pool()),
			EnergyTypeRepository: db.NewEnergyTypeRepository(database.Pool()),
		}, database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
