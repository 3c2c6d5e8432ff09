package web

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/amiibo-sheets/internal/web/handlers"
	"github.com/kozaktomas/amiibo-sheets/internal/web/middleware"
	"github.com/kozaktomas/amiibo-sheets/internal/web/static"
)

func (s *Server) setupRoutes() {
	loader := s.generator.Loader()

	layoutHandler := handlers.NewLayoutHandler(loader)
	backDesignsHandler := handlers.NewBackDesignsHandler(s.generator.Designs(), loader, s.generator.AssetBase())
	renderHandler := handlers.NewRenderHandler(s.generator, s.store, s.jobManager)
	templatesHandler := handlers.NewTemplatesHandler(s.store)
	catalogHandler := handlers.NewCatalogHandler(s.catalog)
	uploadHandler := handlers.NewUploadHandler(loader)
	configHandler := handlers.NewConfigHandler(s.config)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)

		// Layout and image measurement
		r.Get("/page-sizes", layoutHandler.PageSizes)
		r.Post("/layout", layoutHandler.Calculate)
		r.Post("/cover-fit", layoutHandler.CoverFit)
		r.Post("/dominant-color", layoutHandler.DominantColor)

		// Back designs
		r.Get("/back-designs", backDesignsHandler.List)
		r.Get("/back-designs/{id}/preview.png", backDesignsHandler.Preview)
		r.Post("/uploads", uploadHandler.Upload)

		// Render jobs (long-running)
		r.Post("/render", renderHandler.Start)
		r.Get("/render", renderHandler.List)
		r.Get("/render/{jobId}", renderHandler.Status)
		r.Get("/render/{jobId}/events", renderHandler.Events)
		r.Delete("/render/{jobId}", renderHandler.Cancel)
		r.Get("/render/{jobId}/pages/{n}.png", renderHandler.Page)
		r.Get("/render/{jobId}/pdf", renderHandler.PDF)
		r.Get("/render/{jobId}/zip", renderHandler.Zip)

		// Templates
		r.Get("/templates", templatesHandler.List)
		r.Post("/templates", templatesHandler.Create)
		r.Get("/templates/export", templatesHandler.Export)
		r.Post("/templates/import", templatesHandler.Import)
		r.Get("/templates/{id}", templatesHandler.Get)
		r.Put("/templates/{id}", templatesHandler.Update)
		r.Delete("/templates/{id}", templatesHandler.Delete)

		// Amiibo catalog proxy
		r.Get("/catalog/health", catalogHandler.Health)
		r.Get("/catalog/amiibo", catalogHandler.Search)
		r.Get("/catalog/series", catalogHandler.Series)
	})

	// Serve static files for frontend (SPA)
	s.router.With(middleware.SecurityHeaders()).Get("/*", s.serveSPA)
}

// serveSPA serves the embedded frontend, falling back to index.html for
// client-side routes.
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	fsys := static.GetFileSystem()

	p := r.URL.Path
	if p == "/" {
		p = "/index.html"
	}

	if f, err := fsys.Open(p); err == nil {
		defer f.Close()
		if stat, err := f.Stat(); err == nil && !stat.IsDir() {
			contentType := mime.TypeByExtension(path.Ext(p))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			w.Header().Set("Content-Type", contentType)
			if strings.HasPrefix(p, "/assets/") {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}
			w.WriteHeader(http.StatusOK)
			_, _ = io.Copy(w, f)
			return
		}
	}

	if strings.HasPrefix(p, "/assets/") || strings.HasPrefix(p, "/api/") {
		http.NotFound(w, r)
		return
	}

	index, err := fsys.Open("/index.html")
	if err != nil {
		http.Error(w, "frontend not available", http.StatusNotFound)
		return
	}
	defer index.Close()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, index)
}
