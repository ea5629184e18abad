package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/filedrop/internal/config"
	"github.com/templui/filedrop/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back catalog migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, database *sqlx.DB, driver string) error {
				return db.RunMigrations(ctx, database.DB, driver)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, database *sqlx.DB, driver string) error {
				return db.MigrateDown(ctx, database.DB, driver)
			})
		},
	})

	return cmd
}

// withDatabase opens the configured catalog database, waiting for Postgres if needed
func withDatabase(ctx context.Context, fn func(context.Context, *sqlx.DB, string) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig()

	connection := cfg.DBConnection
	if cfg.DBDriver == config.DriverPostgres {
		connection = cfg.PostgresDSN()
	}
	if cfg.DBDriver == config.DriverSQLite && cfg.DBMode == "memory" {
		return fmt.Errorf("migrations on an in-memory database are lost on exit")
	}

	database, err := db.Open(cfg.DBDriver, connection, false)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	if cfg.DBDriver == config.DriverPostgres {
		err = db.Wait(ctx, database, db.WaitPolicy{
			Retries: uint64(max(cfg.DBConnectRetries, 0)),
			Backoff: cfg.DBConnectBackoff,
			Timeout: cfg.DBConnectTimeout,
		})
		if err != nil {
			return err
		}
	}

	return fn(ctx, database, cfg.DBDriver)
}
