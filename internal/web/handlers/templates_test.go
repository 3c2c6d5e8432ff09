package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

func seedTemplate(t *testing.T, store templates.Store, cfg templates.Config) templates.Config {
	t.Helper()
	saved, err := store.Save(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to seed template: %v", err)
	}
	return saved
}

func TestTemplatesHandler_CreateAndGet(t *testing.T) {
	store := templates.NewMemoryStore()
	handler := NewTemplatesHandler(store)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(t, http.MethodPost, "/api/v1/templates", map[string]any{
		"id":   "ignored",
		"name": "Kirby coins",
	}))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var created templates.Config
	decodeResponse(t, recorder, &created)
	if created.ID == "" || created.ID == "ignored" {
		t.Errorf("expected a generated id, got %q", created.ID)
	}
	if created.Diameter != templates.DefaultDiameter || created.PageSize != "a4" {
		t.Errorf("expected defaults to fill missing fields, got %+v", created)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}

	recorder = httptest.NewRecorder()
	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/templates/"+created.ID, nil),
		map[string]string{"id": created.ID})
	handler.Get(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var got templates.Config
	decodeResponse(t, recorder, &got)
	if got.Name != "Kirby coins" {
		t.Errorf("expected name 'Kirby coins', got %q", got.Name)
	}
}

func TestTemplatesHandler_CreateValidation(t *testing.T) {
	handler := NewTemplatesHandler(templates.NewMemoryStore())

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing name", map[string]any{}, http.StatusBadRequest},
		{"unknown page size", map[string]any{"name": "x", "pageSize": "b5"}, http.StatusBadRequest},
		{"negative margin", map[string]any{"name": "x", "margin": -1}, http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.Create(recorder, jsonRequest(t, http.MethodPost, "/api/v1/templates", tc.body))
			if recorder.Code != tc.want {
				t.Errorf("expected status %d, got %d: %s", tc.want, recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestTemplatesHandler_ListOmitsItems(t *testing.T) {
	store := templates.NewMemoryStore()
	seedTemplate(t, store, testTemplate(t))
	handler := NewTemplatesHandler(store)

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))

	var result []map[string]any
	decodeResponse(t, recorder, &result)
	if len(result) != 1 {
		t.Fatalf("expected 1 template, got %d", len(result))
	}
	if result[0]["itemCount"] != float64(2) {
		t.Errorf("expected itemCount 2, got %v", result[0]["itemCount"])
	}
	if _, ok := result[0]["items"]; ok {
		t.Error("list entries should not carry items")
	}
}

func TestTemplatesHandler_UpdateMergesFields(t *testing.T) {
	store := templates.NewMemoryStore()
	saved := seedTemplate(t, store, testTemplate(t))
	handler := NewTemplatesHandler(store)

	recorder := httptest.NewRecorder()
	req := requestWithChiParams(
		jsonRequest(t, http.MethodPut, "/api/v1/templates/"+saved.ID, map[string]any{"name": "Renamed", "margin": 8}),
		map[string]string{"id": saved.ID})
	handler.Update(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var updated templates.Config
	decodeResponse(t, recorder, &updated)
	if updated.Name != "Renamed" || updated.Margin != 8 {
		t.Errorf("expected updated fields, got name=%q margin=%v", updated.Name, updated.Margin)
	}
	if len(updated.Items) != 2 {
		t.Errorf("expected items to be kept, got %d", len(updated.Items))
	}
	if !updated.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("createdAt changed from %v to %v", saved.CreatedAt, updated.CreatedAt)
	}
}

func TestTemplatesHandler_NotFound(t *testing.T) {
	handler := NewTemplatesHandler(templates.NewMemoryStore())
	params := map[string]string{"id": "missing"}

	tests := []struct {
		name   string
		method string
		call   func(http.ResponseWriter, *http.Request)
	}{
		{"get", http.MethodGet, handler.Get},
		{"update", http.MethodPut, handler.Update},
		{"delete", http.MethodDelete, handler.Delete},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := requestWithChiParams(jsonRequest(t, tc.method, "/api/v1/templates/missing", map[string]any{"name": "x"}), params)
			tc.call(recorder, req)
			if recorder.Code != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", recorder.Code)
			}
		})
	}
}

func TestTemplatesHandler_Delete(t *testing.T) {
	store := templates.NewMemoryStore()
	saved := seedTemplate(t, store, testTemplate(t))
	handler := NewTemplatesHandler(store)

	recorder := httptest.NewRecorder()
	handler.Delete(recorder, requestWithChiParams(httptest.NewRequest(http.MethodDelete, "/", nil), map[string]string{"id": saved.ID}))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if _, err := store.Get(context.Background(), saved.ID); err == nil {
		t.Error("expected template to be deleted")
	}
}

func TestTemplatesHandler_ExportImport(t *testing.T) {
	source := templates.NewMemoryStore()
	saved := seedTemplate(t, source, testTemplate(t))
	seedTemplate(t, source, templates.Config{
		Name: "Cards", TemplateType: "card", PageSize: "letter", CardWidth: 54, CardHeight: 85,
	})

	recorder := httptest.NewRecorder()
	NewTemplatesHandler(source).Export(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/templates/export", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if cd := recorder.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %q", cd)
	}
	exported := recorder.Body.Bytes()

	// Import into a store that already holds one of the ids.
	target := templates.NewMemoryStore()
	seedTemplate(t, target, saved)
	handler := NewTemplatesHandler(target)

	recorder = httptest.NewRecorder()
	handler.Import(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/templates/import", bytes.NewReader(exported)))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var result templates.ImportResult
	decodeResponse(t, recorder, &result)
	if result.Imported != 2 || result.Skipped != 0 {
		t.Errorf("expected 2 imported, got %+v", result)
	}

	all, err := target.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 templates after merge, got %d", len(all))
	}
}

func TestTemplatesHandler_ExportSingle(t *testing.T) {
	store := templates.NewMemoryStore()
	saved := seedTemplate(t, store, testTemplate(t))
	handler := NewTemplatesHandler(store)

	recorder := httptest.NewRecorder()
	handler.Export(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/templates/export?id="+saved.ID, nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var result []templates.Config
	decodeResponse(t, recorder, &result)
	if len(result) != 1 || result[0].ID != saved.ID {
		t.Errorf("expected only the requested template, got %d entries", len(result))
	}
}

func TestTemplatesHandler_ImportInvalid(t *testing.T) {
	handler := NewTemplatesHandler(templates.NewMemoryStore())

	recorder := httptest.NewRecorder()
	handler.Import(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/templates/import", strings.NewReader("not json")))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", recorder.Code)
	}
}
