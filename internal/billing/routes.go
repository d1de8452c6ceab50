package billing

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/bills", h.List)
	r.Post("/bills", h.Create)
	r.Get("/bills/{id}", h.Show)
	r.Delete("/bills/{id}", h.Delete)
	r.Get("/bills/{id}/document", h.Document)
	r.Get("/bills/{id}/payments", h.ListPayments)
	r.Post("/bills/{id}/payments", h.RecordPayment)
}
