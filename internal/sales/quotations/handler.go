package quotations

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/shared"
)

// Renderer turns a quote into a PDF document.
type Renderer interface {
	RenderQuote(ctx context.Context, quote *Detail) ([]byte, error)
}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	renderer  Renderer
	rbac      rbac.Middleware
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, renderer Renderer, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		renderer:  renderer,
		rbac:      rbac,
		validator: validator.New(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())

	quote, err := h.service.Create(r.Context(), req, principal.UserID)
	if err != nil {
		if !httpx.IsClientError(err) {
			h.logger.Error("create quote failed", "error", err)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, CreateQuoteResponse{
		ID:     quote.ID,
		Number: quote.Number,
		Status: quote.Status,
		Label:  quote.StatusLabel,
		Total:  quote.Total,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.All(r.Context())
	if err != nil {
		h.logger.Error("list quotes failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotes)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, h.service.MyQuotes(r.Context(), principal.UserID))
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.Pending(r.Context())
	if err != nil {
		h.logger.Error("list pending quotes failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotes)
}

func (h *Handler) Approved(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.ApprovedWithoutOrder(r.Context())
	if err != nil {
		h.logger.Error("list approved quotes failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotes)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "show quote failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	logs, err := h.service.History(r.Context(), id)
	if err != nil {
		h.fail(w, "quote history failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, logs)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "load quote for pdf failed", err)
		return
	}
	pdf, err := h.renderer.RenderQuote(r.Context(), detail)
	if err != nil {
		h.fail(w, "render quote pdf failed", err)
		return
	}
	WritePDF(w, detail.Number, pdf)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	quote, err := h.service.Approve(r.Context(), id, principal)
	if err != nil {
		h.fail(w, "approve quote failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req RejectRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	quote, err := h.service.Reject(r.Context(), id, req.Reason, principal)
	if err != nil {
		h.fail(w, "reject quote failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(msg, "error", err)
	}
	httpx.RespondError(w, err)
}

// WritePDF sends an inline PDF named after the quote number.
func WritePDF(w http.ResponseWriter, number string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", number))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
