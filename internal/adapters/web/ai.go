package web

import (
	"encoding/json"
	"net/http"
	"strings"
)

// interpretCommand handles POST /api/ai/interpret. It returns the agent's
// structured proposal (or clarification request); execution of a proposed
// command goes through the normal transfer/split endpoints after the user
// confirms.
func (h *Handler) interpretCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.InterpretStockCommand(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, map[string]any{
		"is_clarification": result.IsClarification,
		"clarification":    result.ClarificationMessage,
		"command":          result.Command,
	})
}
