package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/udisondev/powerlevel/internal/db/migrations"
)

// RunMigrations runs the PostgreSQL goose migrations on the given DSN.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return migrate(ctx, sqlDB, "postgres", migrations.PostgresDir)
}

// runSQLiteMigrations applies the SQLite migrations on an open handle.
func runSQLiteMigrations(ctx context.Context, sqlDB *sql.DB) error {
	return migrate(ctx, sqlDB, "sqlite3", migrations.SQLiteDir)
}

func migrate(ctx context.Context, sqlDB *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting goose dialect %s: %w", dialect, err)
	}
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("running %s migrations: %w", dialect, err)
	}
	return nil
}
