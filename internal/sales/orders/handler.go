package orders

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      rbac,
		validator: validator.New(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())

	order, err := h.service.Create(r.Context(), req.QuoteID, principal.UserID)
	if err != nil {
		if !httpx.IsClientError(err) {
			h.logger.Error("create order failed", "error", err)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, CreateOrderResponse{ID: order.ID})
}

func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.Active(r.Context())
	if err != nil {
		h.logger.Error("list active orders failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())

	order, err := h.service.AdvanceStatus(r.Context(), id, req.Status, principal.UserID)
	if err != nil {
		if !httpx.IsClientError(err) {
			h.logger.Error("update order status failed", "order_id", id, "error", err)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
