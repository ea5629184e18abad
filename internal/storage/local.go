package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// LocalStorage keeps blobs as files under a single root directory
type LocalStorage struct {
	root string // Absolute
}

// NewLocalStorage creates a disk storage rooted at dir, creating it if needed
func NewLocalStorage(dir string) (*LocalStorage, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads directory: %w", err)
	}

	err = os.MkdirAll(root, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	return &LocalStorage{root: root}, nil
}

// Root returns the absolute storage directory
func (s *LocalStorage) Root() string {
	return s.root
}

// Save writes r to <root>/<name> through a temp file and rename,
// so a failed or interrupted write never leaves a partial file at the returned path
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid storage name %q", name)
	}

	// The root may have been removed since startup
	err := os.MkdirAll(s.root, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	path := filepath.Join(s.root, name)
	err = atomic.WriteFile(path, r)
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}

// Open opens a stored file for reading
func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.contains(path) {
		return nil, fmt.Errorf("%w: %s is outside the storage root", ErrBlobUnavailable, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlobUnavailable, err)
	}

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrBlobUnavailable, path)
	}

	return file, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if !s.contains(path) {
		return fmt.Errorf("refusing to delete %s outside the storage root", path)
	}

	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) contains(path string) bool {
	clean := filepath.Clean(path)
	return strings.HasPrefix(clean, s.root+string(filepath.Separator))
}
