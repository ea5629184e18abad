package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/templui/filedrop/internal/metrics"
	"github.com/templui/filedrop/internal/model"
	"github.com/templui/filedrop/internal/repository"
	"github.com/templui/filedrop/internal/storage"
	"github.com/templui/filedrop/internal/validation"
)

type FileService struct {
	fileRepo    repository.FileRepository
	storage     storage.Storage
	constraints validation.FileConstraints
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage, constraints validation.FileConstraints) *FileService {
	return &FileService{
		fileRepo:    fileRepo,
		storage:     storage,
		constraints: constraints,
	}
}

// Constraints returns the validation rules uploads are checked against
func (s *FileService) Constraints() validation.FileConstraints {
	return s.constraints
}

// Upload validates, stores and catalogs one file.
// The record is created only after the content is fully written;
// a rejected upload touches neither storage nor the catalog.
func (s *FileService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.File, error) {
	if file == nil || header == nil {
		metrics.UploadsTotal.WithLabelValues(metrics.UploadRejected).Inc()
		return nil, ErrNoFile
	}

	err := validation.ValidateFile(header, s.constraints)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.UploadRejected).Inc()
		return nil, err
	}

	storageName := storage.GenerateName(header.Filename)

	storagePath, err := s.storage.Save(ctx, storageName, file)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.UploadFailed).Inc()
		return nil, fmt.Errorf("%w: failed to save file: %w", ErrStorage, err)
	}

	fileModel := &model.File{
		StorageName:  storageName,
		OriginalName: header.Filename,
		MimeType:     validation.NormalizeMimeType(header.Header.Get("Content-Type")),
		Size:         header.Size,
		StoragePath:  storagePath,
		UploadedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	err = s.fileRepo.Create(ctx, fileModel)
	if err != nil {
		// If DB insert fails, try to cleanup the stored content.
		// Use a fresh context: the request context may be the reason the insert failed.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		delErr := s.storage.Delete(cleanupCtx, storagePath)
		cancel()
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		metrics.UploadsTotal.WithLabelValues(metrics.UploadFailed).Inc()
		return nil, fmt.Errorf("%w: failed to create file record: %w", ErrCatalog, err)
	}

	metrics.UploadsTotal.WithLabelValues(metrics.UploadStored).Inc()
	metrics.UploadedBytesTotal.Add(float64(fileModel.Size))
	slog.Info("file uploaded",
		"file_id", fileModel.ID,
		"storage_name", storageName,
		"mime_type", fileModel.MimeType,
		"size", fileModel.Size,
	)

	return fileModel, nil
}

// Files returns all catalog records, newest first
func (s *FileService) Files(ctx context.Context) ([]*model.File, error) {
	files, err := s.fileRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list files: %w", ErrCatalog, err)
	}
	return files, nil
}

// File returns one record. ErrFileNotFound is passed through unwrapped.
func (s *FileService) File(ctx context.Context, id int64) (*model.File, error) {
	file, err := s.fileRepo.ByID(ctx, id)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get file: %w", ErrCatalog, err)
	}
	return file, nil
}

// Open resolves a record and opens its content. The caller must close the reader.
// A record whose content cannot be read is a server-side inconsistency, not a 404.
func (s *FileService) Open(ctx context.Context, id int64) (*model.File, io.ReadCloser, error) {
	file, err := s.File(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.storage.Open(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobUnavailable) {
			return nil, nil, fmt.Errorf("%w: file %d: %w", ErrStorageInconsistency, id, err)
		}
		return nil, nil, fmt.Errorf("%w: failed to open file %d: %w", ErrStorage, id, err)
	}

	return file, content, nil
}

// Ping checks that the catalog is reachable
func (s *FileService) Ping(ctx context.Context) error {
	return s.fileRepo.Ping(ctx)
}

// Verify opens every record's content and returns the records whose content
// is unavailable. Other storage faults abort the walk.
func (s *FileService) Verify(ctx context.Context) ([]*model.File, error) {
	files, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}

	missing := []*model.File{}
	for _, file := range files {
		content, err := s.storage.Open(ctx, file.StoragePath)
		if errors.Is(err, storage.ErrBlobUnavailable) {
			missing = append(missing, file)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open file %d: %w", ErrStorage, file.ID, err)
		}
		_ = content.Close()
	}

	if len(missing) > 0 {
		slog.Warn("files without content", "count", len(missing), "total", len(files))
	}
	return missing, nil
}
