package web

import (
	"net/http"

	"stockroom/internal/app"

	"github.com/go-chi/chi/v5"
)

const maxRequestBody = 1 << 20 // 1 MB; stock payloads are small

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(maxRequestBody))

	r.Get("/api/health", h.health)

	// ── Items and their derived stock views ───────────────────────────────────
	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Post("/", h.createItem)
		r.Delete("/{itemID}", h.deleteItem)
		r.Get("/{itemID}/stock", h.stockSummary)

		// ── Allocation engine ─────────────────────────────────────────────────
		r.Get("/{itemID}/allocations", h.listAllocations)
		r.Post("/{itemID}/allocations", h.createAllocation)
		r.Post("/{itemID}/transfer", h.transfer)
		r.Post("/{itemID}/split", h.splitToContainer)
	})

	r.Patch("/api/allocations/{allocationID}", h.updateAllocation)
	r.Delete("/api/allocations/{allocationID}", h.deleteAllocation)

	// ── Locations and container capacity ──────────────────────────────────────
	r.Route("/api/locations", func(r chi.Router) {
		r.Get("/", h.listLocations)
		r.Post("/", h.createLocation)
		r.Delete("/{locationID}", h.deleteLocation)
		r.Get("/{locationID}/usage", h.containerUsage)
	})

	// ── AI command interpreter ────────────────────────────────────────────────
	r.Post("/api/ai/interpret", h.interpretCommand)

	h.router = r
	return r
}

// health handles GET /api/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
