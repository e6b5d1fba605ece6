package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/genuino/cotizaciones/internal/shared"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermOrderManage))
		r.Get("/orders/active", h.Active)
		r.Post("/orders", h.Create)
		r.Post("/orders/{id}/status", h.UpdateStatus)
	})
}
