package handlers

import (
	"bytes"
	"image"
	"log"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/amiibo-sheets/internal/backdesign"
	"github.com/kozaktomas/amiibo-sheets/internal/constants"
	"github.com/kozaktomas/amiibo-sheets/internal/export"
	"github.com/kozaktomas/amiibo-sheets/internal/imageload"
)

// previewSeries is the series name the preview resolver selects a design for.
const previewSeries = "preview"

// BackDesignsHandler lists back designs and renders their previews
type BackDesignsHandler struct {
	designs   *backdesign.Catalog
	loader    *imageload.Loader
	assetBase string
}

// NewBackDesignsHandler creates a new back designs handler
func NewBackDesignsHandler(designs *backdesign.Catalog, loader *imageload.Loader, assetBase string) *BackDesignsHandler {
	return &BackDesignsHandler{
		designs:   designs,
		loader:    loader,
		assetBase: assetBase,
	}
}

// BackDesignInfo is the list form of a design
type BackDesignInfo struct {
	backdesign.Design
	Generated bool `json:"generated"`
}

// List returns all back designs in display order
func (h *BackDesignsHandler) List(w http.ResponseWriter, r *http.Request) {
	all := h.designs.All()
	out := make([]BackDesignInfo, 0, len(all))
	for _, d := range all {
		out = append(out, BackDesignInfo{Design: d, Generated: d.Generated()})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"default": backdesign.DefaultID,
		"designs": out,
	})
}

// Preview renders a design as PNG. Query: shape=coin|card, size=<px>.
func (h *BackDesignsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == backdesign.CustomID {
		respondError(w, http.StatusBadRequest, "custom designs have no preview")
		return
	}
	if _, ok := h.designs.Lookup(id); !ok {
		respondError(w, http.StatusNotFound, "back design not found")
		return
	}

	shape := r.URL.Query().Get("shape")
	if shape == "" {
		shape = "coin"
	}
	if shape != "coin" && shape != "card" {
		respondError(w, http.StatusBadRequest, "shape must be coin or card")
		return
	}

	size := backdesign.PreviewSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > constants.MaxPreviewSize {
			respondError(w, http.StatusBadRequest, "size must be between 1 and "+strconv.Itoa(constants.MaxPreviewSize))
			return
		}
		size = n
	}

	resolver := backdesign.NewResolver(h.designs, backdesign.ResolverOptions{
		Selections: map[string]string{previewSeries: id},
		Circle:     shape == "coin",
		Size:       size,
		AssetBase:  h.assetBase,
	})

	var img image.Image
	src := resolver.Resolve(previewSeries)
	switch src.Kind {
	case backdesign.SourceGenerated:
		img = src.Image
	case backdesign.SourceAsset:
		loaded, err := h.loader.Load(r.Context(), src.Ref)
		if err != nil {
			log.Printf("WARNING: back design %s asset unavailable: %v", sanitizeForLog(id), err)
			respondError(w, http.StatusNotFound, "back design asset not available")
			return
		}
		img = imaging.Fill(loaded, size, size, imaging.Center, imaging.Lanczos)
	default:
		respondError(w, http.StatusNotFound, "back design has no image")
		return
	}

	var buf bytes.Buffer
	if err := export.EncodePNG(&buf, img); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeDownload(w, "image/png", id+".png", false, buf.Bytes())
}
