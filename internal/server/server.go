// Package server provides the HTTP API for Ablage.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/archive"
	"github.com/ablagehq/ablage/internal/config"
	"github.com/ablagehq/ablage/internal/kernel"
)

// Server is the HTTP server for the Ablage API.
type Server struct {
	archive *archive.Service
	kernel  *kernel.Kernel
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. kernel may be nil
// when no AI provider is configured; the chat endpoint then responds 503
// while the archive endpoints keep working.
func NewServer(
	svc *archive.Service,
	k *kernel.Kernel,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		archive: svc,
		kernel:  k,
		config:  cfg,
		logger:  logger,
	}
}

// Routes builds the router. Split out from Start for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Sorting a full batch means one classifier round-trip per file.
	r.Use(middleware.Timeout(300 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/dms", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/tree", s.handleTree)
		r.Get("/import-list", s.handleImportList)
		r.Post("/upload", s.handleUpload)
		r.Post("/sort", s.handleSort)
		r.Get("/search", s.handleSearch)
		r.Get("/download", s.handleDownload)
		r.Get("/preview", s.handlePreview)
		r.Get("/import-preview", s.handleImportPreview)
		r.Delete("/delete", s.handleDeleteImport)
		r.Delete("/delete-archive", s.handleDeleteArchive)
		r.Post("/move", s.handleMove)
		r.Get("/settings", s.handleSettingsGet)
		r.Post("/settings", s.handleSettingsSet)
		r.Post("/settings/remove-password", s.handleRemovePassword)
	})
	r.Post("/api/chat", s.handleChat)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
