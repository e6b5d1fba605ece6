package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListTypes(r.Context())
	if err != nil {
		h.fail(w, "list catalog types failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, types)
}

func (h *Handler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req TypeRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.service.CreateType(r.Context(), req)
	if err != nil {
		h.fail(w, "create catalog type failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func (h *Handler) UpdateType(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req TypeRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.UpdateType(r.Context(), id, req); err != nil {
		h.fail(w, "update catalog type failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteType(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteType(r.Context(), id); err != nil {
		h.fail(w, "delete catalog type failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		h.fail(w, "list catalog failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.fail(w, "get catalog item failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		h.fail(w, "create catalog item failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req ItemRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.UpdateItem(r.Context(), id, req); err != nil {
		h.fail(w, "update catalog item failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		h.fail(w, "delete catalog item failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(msg, "error", err)
	}
	httpx.RespondError(w, err)
}
