package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/templui/filedrop/internal/config"
	"github.com/templui/filedrop/internal/middleware"
	"github.com/templui/filedrop/internal/repository"
	"github.com/templui/filedrop/internal/service"
	"github.com/templui/filedrop/internal/storage"
	"github.com/templui/filedrop/internal/validation"
)

type App struct {
	Cfg           *config.Config
	Files         repository.FileRepository
	Storage       storage.Storage
	FileService   *service.FileService
	UploadLimiter *middleware.RateLimiter
}

// New wires the catalog, blob store and services. The catalog is
// initialized before New returns, so a failed Init means no server.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Catalog
	files, err := repository.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	err = files.Init(ctx)
	if err != nil {
		_ = files.Close()
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = files.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	constraints := validation.UploadConstraints.
		WithMaxSize(cfg.UploadMaxSize).
		WithSniffing(cfg.UploadStrictContent)
	fileService := service.NewFileService(files, fileStorage, constraints)

	var limiter *middleware.RateLimiter
	if cfg.UploadRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.UploadRateLimit, cfg.UploadRateWindow)
	}

	return &App{
		Cfg:           cfg,
		Files:         files,
		Storage:       fileStorage,
		FileService:   fileService,
		UploadLimiter: limiter,
	}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Files != nil {
		errs = append(errs, a.Files.Close())
	}
	return errors.Join(errs...)
}
