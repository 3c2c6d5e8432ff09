package handlers

import (
	"net/http"

	"github.com/kozaktomas/amiibo-sheets/internal/config"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	DPI                 int              `json:"dpi"`
	DefaultPageSize     string           `json:"default_page_size"`
	Defaults            templates.Config `json:"defaults"`
	CatalogURL          string           `json:"catalog_url"`
	AssetsConfigured    bool             `json:"assets_configured"`
	TemplatesPersistent bool             `json:"templates_persistent"`
}

// Get returns the available configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	response := ConfigResponse{
		DPI:                 layout.DPI,
		DefaultPageSize:     layout.DefaultPageSizeKey,
		Defaults:            templates.Defaults(),
		CatalogURL:          h.config.Catalog.URL,
		AssetsConfigured:    h.config.Assets.Base() != "",
		TemplatesPersistent: templates.IsPersistent(),
	}

	respondJSON(w, http.StatusOK, response)
}
