package customers

import (
	"github.com/go-chi/chi/v5"

	"github.com/genuino/cotizaciones/internal/shared"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermCustomerView))
		r.Get("/customers", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermCustomerCreate))
		r.Post("/customers", h.Create)
	})
}
