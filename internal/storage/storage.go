package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/templui/filedrop/internal/config"
)

// ErrBlobUnavailable is returned when stored content cannot be read back
// (missing object, permission error). It is distinct from a missing catalog record.
var ErrBlobUnavailable = errors.New("blob unavailable")

// Storage defines the interface for blob storage operations
type Storage interface {
	// Save writes the full content under name and returns the path Open accepts.
	// Either the whole content lands at the returned path or an error is returned.
	Save(ctx context.Context, name string, r io.Reader) (string, error)

	// Open streams content previously written by Save
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes content at the given path
	Delete(ctx context.Context, path string) error
}

// New creates the storage backend selected by STORAGE_DRIVER
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	case cfg.StorageLocal:
		slog.Info("initializing local storage", "dir", c.UploadsDir)
		return NewLocalStorage(c.UploadsDir)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.StorageDriver)
	}
}
