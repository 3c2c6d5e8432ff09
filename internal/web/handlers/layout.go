package handlers

import (
	"image"
	"image/color"
	"log"
	"net/http"

	"github.com/kozaktomas/amiibo-sheets/internal/adjust"
	"github.com/kozaktomas/amiibo-sheets/internal/colorsample"
	"github.com/kozaktomas/amiibo-sheets/internal/imageload"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

// LayoutHandler handles layout previews and image measurement endpoints
type LayoutHandler struct {
	loader *imageload.Loader
}

// NewLayoutHandler creates a new layout handler
func NewLayoutHandler(loader *imageload.Loader) *LayoutHandler {
	return &LayoutHandler{loader: loader}
}

// PageSizes returns the supported page sizes
func (h *LayoutHandler) PageSizes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"default":    layout.DefaultPageSizeKey,
		"page_sizes": layout.PageSizes(),
	})
}

// LayoutRequest carries template layout fields plus the number of items
type LayoutRequest struct {
	templates.Config
	ItemCount int `json:"itemCount"`
}

// LayoutResponse is the grid summary with its pixel geometry
type LayoutResponse struct {
	layout.Summary
	DPI          int `json:"dpi"`
	PageWidthPx  int `json:"page_width_px"`
	PageHeightPx int `json:"page_height_px"`
	ItemWidthPx  int `json:"item_width_px"`
	ItemHeightPx int `json:"item_height_px"`
	MarginPx     int `json:"margin_px"`
	SpacingPx    int `json:"spacing_px"`
}

// Calculate computes the grid for a template configuration
func (h *LayoutHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	req := LayoutRequest{Config: templates.Defaults()}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ItemCount < 0 {
		respondError(w, http.StatusBadRequest, "itemCount must not be negative")
		return
	}

	params, err := req.Params()
	if err != nil {
		respondConfigError(w, err)
		return
	}
	g, err := layout.Calculate(params)
	if err != nil {
		respondConfigError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, LayoutResponse{
		Summary:      g.Summarize(req.ItemCount),
		DPI:          layout.DPI,
		PageWidthPx:  g.PageWidthPx,
		PageHeightPx: g.PageHeightPx,
		ItemWidthPx:  g.ItemWidthPx,
		ItemHeightPx: g.ItemHeightPx,
		MarginPx:     g.MarginPx,
		SpacingPx:    g.SpacingPx,
	})
}

// CoverFitRequest gives natural image dimensions, or an image to measure
type CoverFitRequest struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Image   string  `json:"image"`
	MaxZoom float64 `json:"max_zoom"`
}

// CoverFit returns the zoom at which an image covers a square frame
func (h *LayoutHandler) CoverFit(w http.ResponseWriter, r *http.Request) {
	var req CoverFitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Image != "" {
		img, err := h.loader.Load(r.Context(), req.Image)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "failed to load image")
			return
		}
		req.Width, req.Height = img.Bounds().Dx(), img.Bounds().Dy()
	}
	if req.Width <= 0 || req.Height <= 0 {
		respondError(w, http.StatusBadRequest, "width and height (or image) are required")
		return
	}

	maxZoom := adjust.MaxCoverZoom
	if req.MaxZoom > 0 {
		maxZoom = req.MaxZoom
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"width":    req.Width,
		"height":   req.Height,
		"zoom":     adjust.CoverZoomWithCap(req.Width, req.Height, maxZoom),
		"uncapped": adjust.CoverZoomUncapped(req.Width, req.Height),
		"max_zoom": maxZoom,
	})
}

// ColorRequest names an image and the sampling mode
type ColorRequest struct {
	Image string `json:"image"`
	Mode  string `json:"mode"` // "dominant" (default) or "banner"
}

// ColorResponse describes a sampled color
type ColorResponse struct {
	R        uint8  `json:"r"`
	G        uint8  `json:"g"`
	B        uint8  `json:"b"`
	CSS      string `json:"css"`
	Hex      string `json:"hex"`
	Mode     string `json:"mode"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// DominantColor samples an image. Unloadable images yield the fallback color.
func (h *LayoutHandler) DominantColor(w http.ResponseWriter, r *http.Request) {
	var req ColorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}
	if req.Mode == "" {
		req.Mode = "dominant"
	}
	if req.Mode != "dominant" && req.Mode != "banner" {
		respondError(w, http.StatusBadRequest, "mode must be dominant or banner")
		return
	}

	var (
		img     image.Image
		loadErr string
	)
	if loaded, err := h.loader.Load(r.Context(), req.Image); err != nil {
		log.Printf("WARNING: color sample: %v", err)
		loadErr = "failed to load image"
	} else {
		img = loaded
	}

	var c color.RGBA
	if req.Mode == "banner" {
		c = colorsample.BannerColor(img)
	} else {
		c = colorsample.Dominant(img)
	}

	respondJSON(w, http.StatusOK, ColorResponse{
		R:        c.R,
		G:        c.G,
		B:        c.B,
		CSS:      colorsample.CSS(c),
		Hex:      colorsample.Hex(c),
		Mode:     req.Mode,
		Fallback: c == colorsample.Fallback,
		Error:    loadErr,
	})
}
