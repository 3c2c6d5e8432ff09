package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
	"github.com/kozaktomas/amiibo-sheets/internal/constants"
)

// CatalogHandler proxies the amiibo catalog API
type CatalogHandler struct {
	client *catalog.Client
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(client *catalog.Client) *CatalogHandler {
	return &CatalogHandler{client: client}
}

// Health reports whether the upstream catalog is reachable
func (h *CatalogHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.client.Health(r.Context()))
}

// Search returns catalog entries as list items ready for a template
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalog.Query{
		Name:         q.Get("name"),
		ID:           q.Get("id"),
		Type:         q.Get("type"),
		Head:         q.Get("head"),
		Tail:         q.Get("tail"),
		GameSeries:   q.Get("gameseries"),
		AmiiboSeries: q.Get("amiiboSeries"),
		Character:    q.Get("character"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.CatalogRequestTimeout)
	defer cancel()

	found, err := h.client.Search(ctx, query)
	if err != nil {
		respondError(w, http.StatusBadGateway, fmt.Sprintf("catalog search failed: %v", err))
		return
	}

	items := make([]catalog.ListItem, 0, len(found))
	for _, a := range found {
		items = append(items, a.ToListItem())
	}
	respondJSON(w, http.StatusOK, map[string]any{"amiibo": items})
}

// Series returns the amiibo series names known to the catalog
func (h *CatalogHandler) Series(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.CatalogRequestTimeout)
	defer cancel()

	series, err := h.client.AmiiboSeries(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, fmt.Sprintf("catalog request failed: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"amiiboSeries": series})
}
