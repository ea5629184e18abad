package repository

import (
	"context"

	"github.com/templui/filedrop/internal/db"
	"github.com/templui/filedrop/internal/model"
)

// PostgresFileRepository is the client-server catalog.
// The server may come up after this process, so Init waits for it.
type PostgresFileRepository struct {
	fileRepository
	wait db.WaitPolicy
}

// NewPostgresFileRepository creates the pool; no connection is made until Init
func NewPostgresFileRepository(dsn string, wait db.WaitPolicy) (*PostgresFileRepository, error) {
	database, err := db.Open(db.DriverPostgres, dsn, false)
	if err != nil {
		return nil, err
	}

	return &PostgresFileRepository{
		fileRepository: fileRepository{db: database, driver: db.DriverPostgres},
		wait:           wait,
	}, nil
}

func (r *PostgresFileRepository) Init(ctx context.Context) error {
	err := db.Wait(ctx, r.db, r.wait)
	if err != nil {
		return err
	}

	return db.RunMigrations(ctx, r.db.DB, r.driver)
}

func (r *PostgresFileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (storage_name, original_name, mime_type, size, storage_path, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	return r.db.QueryRowxContext(ctx, query,
		file.StorageName,
		file.OriginalName,
		file.MimeType,
		file.Size,
		file.StoragePath,
		file.UploadedAt,
	).Scan(&file.ID)
}
