package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"stockroom/internal/core"
)

type errorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorDetails(w, r, message, code, status, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, message, code string, status int, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
		Details:   details,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps the core error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is logged with its request ID and surfaced
// as a generic 500 without exposing internals.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *core.InsufficientStockError
	if errors.As(err, &insufficient) {
		writeErrorDetails(w, r, insufficient.Error(), "INSUFFICIENT_STOCK", http.StatusUnprocessableEntity,
			map[string]any{
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			})
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvalidReference):
		writeError(w, r, err.Error(), "INVALID_REFERENCE", http.StatusUnprocessableEntity)
	default:
		log.Printf("[%s] internal error: %v", requestIDFromContext(r.Context()), err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
