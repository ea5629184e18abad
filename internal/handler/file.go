package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/templui/filedrop/internal/model"
	"github.com/templui/filedrop/internal/service"
	"github.com/templui/filedrop/internal/validation"
)

const (
	// multipartMemory is how much of a multipart body is buffered before spilling to disk
	multipartMemory = 1 << 20
	// multipartOverhead leaves room for boundaries and part headers around the file
	multipartOverhead = 64 << 10
)

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

type uploadResponse struct {
	Message string      `json:"message"`
	FileID  int64       `json:"fileId"`
	File    *model.File `json:"file"`
}

// Upload accepts a multipart form with a single "file" field
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	maxSize := h.fileService.Constraints().MaxSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeServiceError(w, r, validation.TooLarge(maxSize))
			return
		}
		writeError(w, r, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	saved, err := h.fileService.Upload(r.Context(), file, header)
	if err != nil {
		if service.IsValidation(err) {
			slog.Info("upload rejected", "error", err, "filename", header.Filename)
		}
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, uploadResponse{
		Message: "File uploaded successfully",
		FileID:  saved.ID,
		File:    saved,
	})
}

// List returns every file, newest first
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.fileService.Files(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, files)
}

// Download streams the file with a disposition that makes the client save it
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "attachment")
}

// View streams the file inline for preview
func (h *FileHandler) View(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "inline")
}

func (h *FileHandler) serve(w http.ResponseWriter, r *http.Request, disposition string) {
	// Ids start at 1, anything else cannot match a record
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, http.StatusNotFound, "File not found")
		return
	}

	file, content, err := h.fileService.Open(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer func() { _ = content.Close() }()

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(disposition, file.OriginalName))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	// Local files can seek: let net/http handle ranges and conditional requests
	seeker, ok := content.(io.ReadSeeker)
	if ok {
		http.ServeContent(w, r, file.OriginalName, file.UploadedAt, seeker)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.WriteHeader(http.StatusOK)
	_, err = io.Copy(w, content)
	if err != nil {
		slog.Warn("file stream interrupted", "error", err, "file_id", file.ID)
	}
}

// contentDisposition encodes the filename per RFC 6266 (filename* for non-ASCII names)
func contentDisposition(disposition, filename string) string {
	value := mime.FormatMediaType(disposition, map[string]string{"filename": filename})
	if value == "" {
		return disposition
	}
	return value
}
