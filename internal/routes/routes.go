package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/filedrop/internal/app"
	"github.com/templui/filedrop/internal/handler"
	"github.com/templui/filedrop/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	files := handler.NewFileHandler(app.FileService)
	health := handler.NewHealthHandler(app.FileService)

	mux := http.NewServeMux()

	// ============================================================================
	// API
	// ============================================================================

	rateLimit := middleware.RateLimit(app.UploadLimiter, app.Cfg.TrustProxyHeaders)

	mux.HandleFunc("POST /api/upload", rateLimit(files.Upload))
	mux.HandleFunc("GET /api/files", files.List)
	mux.HandleFunc("GET /api/files/download/{id}", files.Download)
	mux.HandleFunc("GET /api/files/view/{id}", files.View)

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /api/health", health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "Not found"})
	})

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.CORS(app.Cfg.CORSAllowedOrigins), // Answers preflight before anything else
		middleware.RequestLogging,
		middleware.Metrics,
	)

	return handler
}
