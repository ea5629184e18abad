package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/filedrop/internal/service"
)

type HealthHandler struct {
	fileService *service.FileService
}

func NewHealthHandler(fileService *service.FileService) *HealthHandler {
	return &HealthHandler{fileService: fileService}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports whether the catalog answers
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	err := h.fileService.Ping(ctx)
	if err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "unavailable"})
		return
	}

	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
