package service

import (
	"errors"

	"github.com/templui/filedrop/internal/repository"
	"github.com/templui/filedrop/internal/validation"
)

var (
	// Client errors (4xx), never retried
	ErrNoFile          = validation.ErrNoFile
	ErrUnsupportedType = validation.ErrUnsupportedType
	ErrFileTooLarge    = validation.ErrFileTooLarge

	// Not an error condition for the service, just a 404
	ErrFileNotFound = repository.ErrFileNotFound

	// Server faults (5xx)
	ErrStorage              = errors.New("storage error")
	ErrCatalog              = errors.New("catalog error")
	ErrStorageInconsistency = errors.New("file content is unavailable")
)

// IsValidation reports whether err was caused by bad input
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrFileTooLarge)
}
