package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ventsim-core/internal/panel"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Device endpoints, at the paths the real unit serves them.
	r.Get("/menu", s.handleMenu)
	r.Get("/unit_version", s.handleUnitVersion)
	r.Get("/mread", s.handleMRead)
	r.Get("/mwrite", s.handleMWrite)

	// Firmware update flow
	r.Get("/file_ver", s.handleFileVersion)
	r.Post("/upload/{filename}", s.handleUpload)
	r.Get("/fw_list", s.handleFirmwareList)
	r.Get("/start_upd", s.handleStartUpdate)
	r.Get("/status_upd", s.handleUpdateStatus)

	// Admin API
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/registers", func(r chi.Router) {
			r.Get("/", s.handleListRegisters)
			r.Get("/{address}", s.handleGetRegister)
		})

		r.Get("/audit", s.handleListWrites)
		r.Post("/system/reset", s.handleReset)

		r.Get("/ws", s.handleWebSocket)
	})

	// Web UI and any other static asset
	r.Handle("/*", panel.Handler(s.cfg.UIDir))

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
