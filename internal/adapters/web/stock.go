package web

import (
	"encoding/json"
	"net/http"

	"stockroom/internal/app"

	"github.com/go-chi/chi/v5"
)

// listItems handles GET /api/items.
func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createItem handles POST /api/items.
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateItem(r.Context(), app.CreateItemRequest{
		Name:        req.Name,
		Kind:        req.Kind,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// deleteItem handles DELETE /api/items/{itemID}.
func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteItem(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stockSummary handles GET /api/items/{itemID}/stock.
func (h *Handler) stockSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockSummary(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listLocations handles GET /api/locations.
func (h *Handler) listLocations(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListLocations(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createLocation handles POST /api/locations.
func (h *Handler) createLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		ParentID    *string `json:"parent_id"`
		Description string  `json:"description"`
		IsMobile    bool    `json:"is_mobile"`
		Capacity    *int    `json:"capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateLocation(r.Context(), app.CreateLocationRequest{
		Name:        req.Name,
		ParentID:    req.ParentID,
		Description: req.Description,
		IsMobile:    req.IsMobile,
		Capacity:    req.Capacity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// deleteLocation handles DELETE /api/locations/{locationID}.
func (h *Handler) deleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLocation(r.Context(), chi.URLParam(r, "locationID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// containerUsage handles GET /api/locations/{locationID}/usage.
func (h *Handler) containerUsage(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetContainerUsage(r.Context(), chi.URLParam(r, "locationID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
