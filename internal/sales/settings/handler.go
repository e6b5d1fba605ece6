package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
	salesshared "github.com/genuino/cotizaciones/internal/sales/shared"
	"github.com/genuino/cotizaciones/internal/shared"
)

// Handler serves the approval threshold endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermSettingsManage))
		r.Get("/settings/approval-threshold", h.getThreshold)
		r.Put("/settings/approval-threshold", h.putThreshold)
	})
}

type thresholdResponse struct {
	Threshold string `json:"threshold"`
}

// thresholdRequest accepts the value as a JSON string or number.
type thresholdRequest struct {
	Threshold json.RawMessage `json:"threshold"`
}

func (h *Handler) getThreshold(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.Threshold(r.Context())
	if err != nil {
		h.logger.Error("read approval threshold", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, thresholdResponse{Threshold: value.StringFixed(salesshared.MoneyScale)})
}

func (h *Handler) putThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	raw := string(req.Threshold)
	var asString string
	if err := json.Unmarshal(req.Threshold, &asString); err == nil {
		raw = asString
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	value, err := h.service.SetThreshold(r.Context(), raw, principal.UserID)
	if err != nil {
		if !httpx.IsClientError(err) {
			h.logger.Error("write approval threshold", "error", err)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, thresholdResponse{Threshold: value.StringFixed(salesshared.MoneyScale)})
}
