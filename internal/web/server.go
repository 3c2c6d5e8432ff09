package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
	"github.com/kozaktomas/amiibo-sheets/internal/config"
	"github.com/kozaktomas/amiibo-sheets/internal/constants"
	"github.com/kozaktomas/amiibo-sheets/internal/sheets"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
	"github.com/kozaktomas/amiibo-sheets/internal/web/handlers"
	"github.com/kozaktomas/amiibo-sheets/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	jobManager *handlers.JobManager
	generator  *sheets.Generator
	catalog    *catalog.Client
	store      templates.Store

	stopPrune chan struct{}
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, store templates.Store) (*Server, error) {
	catalogClient, err := catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.Timeout)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	s := &Server{
		config:     cfg,
		router:     r,
		jobManager: handlers.NewJobManager(),
		generator:  sheets.NewFromConfig(cfg, false),
		catalog:    catalogClient,
		store:      store,
		stopPrune:  make(chan struct{}),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and downloads
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.pruneJobs()

	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// pruneJobs drops finished render jobs so their pages can be collected.
func (s *Server) pruneJobs() {
	ticker := time.NewTicker(constants.JobPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopPrune:
			return
		case <-ticker.C:
			if n := s.jobManager.Prune(constants.JobRetention); n > 0 {
				log.Printf("Pruned %d finished render jobs", n)
			}
		}
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	close(s.stopPrune)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
