package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// maxBackoff caps a single wait between connection attempts
const maxBackoff = 10 * time.Second

// Open creates a connection pool without connecting.
// An in-memory SQLite database lives only as long as its connection,
// so memory mode pins the pool to one connection that is never recycled.
func Open(driver, connection string, memory bool) (*sqlx.DB, error) {
	if driver == DriverSQLite && memory {
		connection = ":memory:"
	}

	// SQLite: create data directory if needed
	if driver == DriverSQLite && !memory {
		err := ensureDataDir(connection)
		if err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == DriverSQLite && memory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
		return db, nil
	}

	// Connection pool configuration (good defaults for all drivers)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// ensureDataDir creates the directory of a file-backed SQLite DSN
func ensureDataDir(connection string) error {
	path := strings.TrimPrefix(connection, "file:")
	path, _, _ = strings.Cut(path, "?")
	if path == "" || path == ":memory:" {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// WaitPolicy bounds how long Wait keeps trying to reach the database
type WaitPolicy struct {
	Retries uint64        // Attempts after the first one
	Backoff time.Duration // First wait, doubled per attempt up to maxBackoff
	Timeout time.Duration // Cap on the total wait, 0 means no cap
}

// Wait pings the database until it answers or the policy is exhausted.
// Used for client-server databases that may start after this process.
func Wait(ctx context.Context, db *sqlx.DB, policy WaitPolicy) error {
	if policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, policy.Timeout)
		defer cancel()
	}

	backoff := policy.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	b := retry.NewExponential(backoff)
	b = retry.WithCappedDuration(maxBackoff, b)
	b = retry.WithMaxRetries(policy.Retries, b)

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		pingErr := db.PingContext(ctx)
		if pingErr != nil {
			slog.Warn("waiting for database",
				"attempt", attempt,
				"retries_left", int(policy.Retries)-attempt+1,
				"error", pingErr,
			)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
	}

	slog.Info("database connected", "attempts", attempt)
	return nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
