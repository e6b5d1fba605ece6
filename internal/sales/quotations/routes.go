package quotations

import (
	"github.com/go-chi/chi/v5"

	"github.com/genuino/cotizaciones/internal/shared"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermQuoteView))
		r.Get("/quotes/mine", h.Mine)
		r.Get("/quotes/approved", h.Approved)
		r.Get("/quotes/{id}", h.Show)
		r.Get("/quotes/{id}/history", h.History)
		r.Get("/quotes/{id}/pdf", h.PDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermQuoteCreate))
		r.Post("/quotes", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermQuoteViewAll))
		r.Get("/quotes", h.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermQuoteApprove))
		r.Get("/quotes/pending", h.Pending)
		r.Post("/quotes/{id}/approve", h.Approve)
		r.Post("/quotes/{id}/reject", h.Reject)
	})
}
