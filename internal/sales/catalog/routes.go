package catalog

import (
	"github.com/go-chi/chi/v5"

	"github.com/genuino/cotizaciones/internal/shared"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermCatalogView, shared.PermCatalogManage))
		r.Get("/catalog-types", h.ListTypes)
		r.Get("/catalog", h.ListItems)
		r.Get("/catalog/{id}", h.GetItem)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermCatalogManage))
		r.Post("/catalog-types", h.CreateType)
		r.Put("/catalog-types/{id}", h.UpdateType)
		r.Delete("/catalog-types/{id}", h.DeleteType)
		r.Post("/catalog", h.CreateItem)
		r.Put("/catalog/{id}", h.UpdateItem)
		r.Delete("/catalog/{id}", h.DeleteItem)
	})
}
