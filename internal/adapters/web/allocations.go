package web

import (
	"encoding/json"
	"net/http"

	"stockroom/internal/app"

	"github.com/go-chi/chi/v5"
)

// listAllocations handles GET /api/items/{itemID}/allocations.
func (h *Handler) listAllocations(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	result, err := h.svc.ListAllocations(r.Context(), itemID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createAllocation handles POST /api/items/{itemID}/allocations.
func (h *Handler) createAllocation(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req struct {
		LocationID string  `json:"location_id"`
		Quantity   int     `json:"quantity"`
		IsPrimary  bool    `json:"is_primary"`
		Notes      *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.LocationID == "" {
		writeError(w, r, "location_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateAllocation(r.Context(), itemID, app.CreateAllocationRequest{
		LocationID: req.LocationID,
		Quantity:   req.Quantity,
		IsPrimary:  req.IsPrimary,
		Notes:      req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// updateAllocation handles PATCH /api/allocations/{allocationID}.
func (h *Handler) updateAllocation(w http.ResponseWriter, r *http.Request) {
	allocationID := chi.URLParam(r, "allocationID")

	var req struct {
		Quantity  *int    `json:"quantity"`
		IsPrimary *bool   `json:"is_primary"`
		Notes     *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.UpdateAllocation(r.Context(), allocationID, app.UpdateAllocationRequest{
		Quantity:  req.Quantity,
		IsPrimary: req.IsPrimary,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// deleteAllocation handles DELETE /api/allocations/{allocationID}.
func (h *Handler) deleteAllocation(w http.ResponseWriter, r *http.Request) {
	allocationID := chi.URLParam(r, "allocationID")

	if err := h.svc.DeleteAllocation(r.Context(), allocationID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transfer handles POST /api/items/{itemID}/transfer.
func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req struct {
		FromLocationID string  `json:"from_location_id"`
		ToLocationID   string  `json:"to_location_id"`
		Quantity       int     `json:"quantity"`
		Notes          *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.FromLocationID == "" || req.ToLocationID == "" {
		writeError(w, r, "from_location_id and to_location_id are required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Transfer(r.Context(), app.TransferRequest{
		ItemID:         itemID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		Notes:          req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// splitToContainer handles POST /api/items/{itemID}/split.
func (h *Handler) splitToContainer(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req struct {
		FromLocationID     string  `json:"from_location_id"`
		Quantity           int     `json:"quantity"`
		CreateNewContainer bool    `json:"create_new_container"`
		ContainerID        *string `json:"container_id"`
		ContainerName      *string `json:"container_name"`
		ParentLocationID   *string `json:"parent_location_id"`
		Capacity           *int    `json:"capacity"`
		Notes              *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.FromLocationID == "" {
		writeError(w, r, "from_location_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.SplitToContainer(r.Context(), app.SplitRequest{
		ItemID:             itemID,
		FromLocationID:     req.FromLocationID,
		Quantity:           req.Quantity,
		CreateNewContainer: req.CreateNewContainer,
		ContainerID:        req.ContainerID,
		ContainerName:      req.ContainerName,
		ParentLocationID:   req.ParentLocationID,
		Capacity:           req.Capacity,
		Notes:              req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
