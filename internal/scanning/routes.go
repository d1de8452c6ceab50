package scanning

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/scan", h.Scan)
	r.Post("/scan/resolve", h.Resolve)
	r.Get("/products/{id}/scans", h.History)
	r.Get("/products/{id}/moves", h.LocationHistory)
}
