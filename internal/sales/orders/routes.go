package orders

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Post("/orders", h.Create)
	r.Get("/orders/{id}", h.Show)
	r.Delete("/orders/{id}", h.Delete)
	r.Post("/orders/{id}/status", h.SetStatus)
	r.Post("/orders/{id}/items/{itemID}/pick", h.PickItem)
}
