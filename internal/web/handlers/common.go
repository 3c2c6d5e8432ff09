package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kozaktomas/amiibo-sheets/internal/constants"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
	"github.com/kozaktomas/amiibo-sheets/internal/sheets"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a size-limited JSON body into v. On failure it writes a
// 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return false
	}
	return true
}

// respondConfigError maps template and layout validation failures to a
// status code: unknown inputs are 400, configurations that cannot be laid
// out are 422. Anything else is an internal error.
func respondConfigError(w http.ResponseWriter, err error) {
	var cfgErr *layout.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		respondError(w, http.StatusUnprocessableEntity, cfgErr.Error())
	case errors.Is(err, layout.ErrUnknownPageSize), errors.Is(err, layout.ErrUnknownTemplateType),
		errors.Is(err, templates.ErrNameRequired), errors.Is(err, templates.ErrUnknownBackDesign),
		errors.Is(err, sheets.ErrNoItems):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("unexpected error: %v", err))
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
