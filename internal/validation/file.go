package validation

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrUnsupportedType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// sniffLength is how much of the upload is read when content sniffing is enabled
const sniffLength = 3072

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes map[string]bool
	MaxSize          int64
	// SniffContent additionally requires the detected content type to match the declared one.
	// Off by default: the declared Content-Type of the part is trusted as-is.
	SniffContent bool
}

// UploadConstraints defines validation rules for the upload endpoint
var UploadConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"text/plain":       true,
		"image/jpeg":       true,
		"image/png":        true,
		"application/json": true,
	},
	MaxSize: 10 << 20, // 10MB
}

// WithMaxSize returns a copy of the constraints with a different size ceiling
func (c FileConstraints) WithMaxSize(maxSize int64) FileConstraints {
	if maxSize > 0 {
		c.MaxSize = maxSize
	}
	return c
}

// WithSniffing returns a copy of the constraints with content sniffing toggled
func (c FileConstraints) WithSniffing(enabled bool) FileConstraints {
	c.SniffContent = enabled
	return c
}

// Accepts reports whether the declared media type is in the allowed set
func (c FileConstraints) Accepts(mimeType string) bool {
	return c.AllowedMimeTypes[NormalizeMimeType(mimeType)]
}

// AllowedList returns the allowed media types, sorted
func (c FileConstraints) AllowedList() []string {
	types := make([]string, 0, len(c.AllowedMimeTypes))
	for t, ok := range c.AllowedMimeTypes {
		if ok {
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

// Accepts reports whether mimeType is accepted by UploadConstraints
func Accepts(mimeType string) bool {
	return UploadConstraints.Accepts(mimeType)
}

// NormalizeMimeType strips parameters and lowercases a media type.
// "Text/Plain; charset=utf-8" -> "text/plain"
func NormalizeMimeType(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mediaType
}

// ValidateFile validates an uploaded part against the constraints.
// Checks run cheapest first so a rejected upload never reaches storage.
func ValidateFile(header *multipart.FileHeader, constraints FileConstraints) error {
	if header == nil {
		return ErrNoFile
	}

	declared := NormalizeMimeType(header.Header.Get("Content-Type"))
	if !constraints.Accepts(declared) {
		return unsupportedType(declared, constraints)
	}

	if constraints.MaxSize > 0 && header.Size > constraints.MaxSize {
		return TooLarge(constraints.MaxSize)
	}

	if constraints.SniffContent {
		return validateContent(header, declared, constraints)
	}

	return nil
}

// validateContent compares the detected content type against the declared one
func validateContent(header *multipart.FileHeader, declared string, constraints FileConstraints) error {
	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	buffer := make([]byte, sniffLength)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Walk up the detected type's hierarchy: JSON content is also valid text/plain
	detected := mimetype.Detect(buffer[:n])
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(declared) {
			return nil
		}
	}

	return fmt.Errorf("%w: declared %s but content looks like %s (allowed: %s)",
		ErrUnsupportedType, declared, detected.String(), strings.Join(constraints.AllowedList(), ", "))
}

// TooLarge builds the ErrFileTooLarge error for a size ceiling
func TooLarge(maxSize int64) error {
	return fmt.Errorf("%w: maximum size is %s", ErrFileTooLarge, humanize.IBytes(uint64(max(maxSize, 0))))
}

func unsupportedType(declared string, constraints FileConstraints) error {
	if declared == "" {
		declared = "unknown"
	}
	return fmt.Errorf("%w: %s is not allowed (allowed: %s)",
		ErrUnsupportedType, declared, strings.Join(constraints.AllowedList(), ", "))
}
