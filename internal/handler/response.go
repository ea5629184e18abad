package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/templui/filedrop/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// writeServiceError maps service errors to HTTP responses.
// Client errors carry their own message; server faults get a fixed one
// so storage paths and driver details never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrFileTooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
	case service.IsValidation(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrFileNotFound):
		writeError(w, r, http.StatusNotFound, "File not found")
	case errors.Is(err, service.ErrStorageInconsistency):
		slog.Error("file record without content", "error", err, "path", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "File content is unavailable")
	case errors.Is(err, service.ErrStorage):
		slog.Error("storage failure", "error", err, "path", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "Failed to store or read file")
	case errors.Is(err, service.ErrCatalog):
		slog.Error("catalog failure", "error", err, "path", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "File catalog is unavailable")
	default:
		slog.Error("unexpected error", "error", err, "path", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
