package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/templui/filedrop/internal/db"
	"github.com/templui/filedrop/internal/model"
)

// SQLiteFileRepository is the embedded, single-file catalog
type SQLiteFileRepository struct {
	fileRepository
	memory bool
}

// NewSQLiteFileRepository opens the database file (or an in-memory database).
// Nothing to wait for: Init only verifies the handle and migrates.
func NewSQLiteFileRepository(dsn string, memory bool) (*SQLiteFileRepository, error) {
	database, err := db.Open(db.DriverSQLite, dsn, memory)
	if err != nil {
		return nil, err
	}

	return &SQLiteFileRepository{
		fileRepository: fileRepository{db: database, driver: db.DriverSQLite},
		memory:         memory,
	}, nil
}

func (r *SQLiteFileRepository) Init(ctx context.Context) error {
	err := r.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	mode := "file"
	if r.memory {
		mode = "memory"
	}
	slog.Info("database connected", "driver", r.driver, "mode", mode)

	return db.RunMigrations(ctx, r.db.DB, r.driver)
}

func (r *SQLiteFileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (storage_name, original_name, mime_type, size, storage_path, uploaded_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		file.StorageName,
		file.OriginalName,
		file.MimeType,
		file.Size,
		file.StoragePath,
		file.UploadedAt,
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}

	file.ID = id
	return nil
}
