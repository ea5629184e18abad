package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filedrop/internal/config"
	"github.com/templui/filedrop/internal/db"
	"github.com/templui/filedrop/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

// FileRepository is the metadata catalog. SQLite and Postgres implement it;
// callers never branch on which one is active.
type FileRepository interface {
	// Init prepares the schema. Idempotent.
	Init(ctx context.Context) error
	// Create inserts the record and sets file.ID
	Create(ctx context.Context, file *model.File) error
	// All returns every record, newest first
	All(ctx context.Context) ([]*model.File, error)
	// ByID returns ErrFileNotFound when no record matches
	ByID(ctx context.Context, id int64) (*model.File, error)
	Ping(ctx context.Context) error
	Close() error
}

// New creates the catalog selected by DB_DRIVER
func New(cfg *config.Config) (FileRepository, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return NewPostgresFileRepository(cfg.PostgresDSN(), db.WaitPolicy{
			Retries: uint64(max(cfg.DBConnectRetries, 0)),
			Backoff: cfg.DBConnectBackoff,
			Timeout: cfg.DBConnectTimeout,
		})
	case config.DriverSQLite:
		return NewSQLiteFileRepository(cfg.DBConnection, cfg.DBMode == "memory")
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}
}

const selectFiles = `SELECT id, storage_name, original_name, mime_type, size, storage_path, uploaded_at FROM files`

// fileRepository holds the queries both dialects share
type fileRepository struct {
	db     *sqlx.DB
	driver string
}

func (r *fileRepository) All(ctx context.Context) ([]*model.File, error) {
	files := []*model.File{}
	query := selectFiles + ` ORDER BY uploaded_at DESC, id DESC`

	err := r.db.SelectContext(ctx, &files, query)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		f.UploadedAt = f.UploadedAt.UTC()
	}
	return files, nil
}

func (r *fileRepository) ByID(ctx context.Context, id int64) (*model.File, error) {
	file := &model.File{}
	query := r.db.Rebind(selectFiles + ` WHERE id = ?`)

	err := r.db.GetContext(ctx, file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	file.UploadedAt = file.UploadedAt.UTC()
	return file, nil
}

func (r *fileRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *fileRepository) Close() error {
	return db.Close(r.db)
}

// DB exposes the pool for health checks and tests
func (r *fileRepository) DB() *sqlx.DB {
	return r.db
}
