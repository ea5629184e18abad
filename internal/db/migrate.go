package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// dialectMap maps database drivers to Goose dialects and migration directories
var dialectMap = map[string]struct {
	dialect goose.Dialect
	dir     string
}{
	DriverSQLite:   {goose.DialectSQLite3, "migrations/sqlite"},
	DriverPostgres: {goose.DialectPostgres, "migrations/postgres"},
}

// newProvider builds a Goose provider for the driver's migration set.
// A provider per call keeps SQLite and Postgres migrations apart in one process.
func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	d, ok := dialectMap[driver]
	if !ok {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}

	migrationsDir, err := fs.Sub(migrationsFS, d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations directory: %w", err)
	}

	provider, err := goose.NewProvider(d.dialect, db, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// RunMigrations applies pending migrations. Safe to call on every startup.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		slog.Debug("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	slog.Info("migrations completed successfully", "driver", driver, "applied", len(results))
	return nil
}

func MigrateDown(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	_, err = provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("rolled back one migration")
	return nil
}
