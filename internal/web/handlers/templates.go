package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/amiibo-sheets/internal/constants"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

// TemplatesHandler handles saved template endpoints
type TemplatesHandler struct {
	store templates.Store
}

// NewTemplatesHandler creates a new templates handler
func NewTemplatesHandler(store templates.Store) *TemplatesHandler {
	return &TemplatesHandler{store: store}
}

// TemplateSummary is the list form of a template without its items
type TemplateSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TemplateType string `json:"templateType"`
	PageSize     string `json:"pageSize"`
	ItemCount    int    `json:"itemCount"`
	ListName     string `json:"listName,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// List returns all templates
func (h *TemplatesHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list templates: %v", err))
		return
	}

	out := make([]TemplateSummary, 0, len(cs))
	for _, c := range cs {
		out = append(out, TemplateSummary{
			ID:           c.ID,
			Name:         c.Name,
			TemplateType: string(c.TemplateType),
			PageSize:     c.PageSize,
			ItemCount:    len(c.Items),
			ListName:     c.ListName,
			CreatedAt:    c.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			UpdatedAt:    c.UpdatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// Get returns one template
func (h *TemplatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Create saves a new template. Any id in the body is ignored.
func (h *TemplatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	c := templates.Defaults()
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = ""

	saved, err := h.store.Save(r.Context(), c)
	if err != nil {
		respondConfigError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// Update replaces an existing template
func (h *TemplatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	// Fields missing from the body keep their stored values.
	c := existing
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = id

	saved, err := h.store.Save(r.Context(), c)
	if err != nil {
		respondConfigError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// Delete removes a template
func (h *TemplatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Export downloads all templates, or one when ?id= is given
func (h *TemplatesHandler) Export(w http.ResponseWriter, r *http.Request) {
	var (
		data []byte
		err  error
		name = "amiibo-templates.json"
	)
	if id := r.URL.Query().Get("id"); id != "" {
		c, getErr := h.store.Get(r.Context(), id)
		if getErr != nil {
			h.respondStoreError(w, getErr)
			return
		}
		data, err = templates.Export([]templates.Config{c})
		name = fmt.Sprintf("amiibo-template-%s.json", c.ID)
	} else {
		data, err = templates.ExportAll(r.Context(), h.store)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to export templates: %v", err))
		return
	}

	writeDownload(w, "application/json", name, true, data)
}

// Import merges templates from a JSON document (a single template or an array)
func (h *TemplatesHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxJSONBodySize))
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	res, err := templates.Import(r.Context(), h.store, data)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *TemplatesHandler) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, templates.ErrNotFound) {
		respondError(w, http.StatusNotFound, "template not found")
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
