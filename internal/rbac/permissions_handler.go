package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/shared"
)

// PermissionsHandler exposes the role catalogue used by the user admin screens.
type PermissionsHandler struct {
	rbac Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{rbac: rbac}
}

// MountRoutes registers role routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermUserManage))
		r.Get("/", h.listRoles)
	})
}

func (h *PermissionsHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, Roles())
}
