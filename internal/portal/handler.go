// Package portal serves the read-only client surface: tax-ID login, the
// client's approved quotes and orders, and quote PDFs.
package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/genuino/cotizaciones/internal/auth"
	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/sales/customers"
	"github.com/genuino/cotizaciones/internal/sales/orders"
	"github.com/genuino/cotizaciones/internal/sales/quotations"
)

// CustomerFinder resolves a customer by tax identifier.
type CustomerFinder interface {
	FindByNIT(ctx context.Context, nitCI string) (*customers.Customer, error)
}

// QuoteSource lists and loads quotes visible to a client.
type QuoteSource interface {
	ClientQuotes(ctx context.Context, customerID int64) []quotations.ClientQuote
	ClientDocument(ctx context.Context, customerID, quoteID int64) (*quotations.Detail, error)
}

// OrderSource lists orders visible to a client.
type OrderSource interface {
	ClientOrders(ctx context.Context, customerID int64) []orders.ClientOrder
}

// LoginRequest is the client login payload.
type LoginRequest struct {
	NitCI string `json:"nit_ci" validate:"required"`
}

// LoginResponse identifies the client and carries its bearer token.
type LoginResponse struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	Token       string `json:"token"`
	ExpiresAt   string `json:"expires_at"`
}

// Handler exposes the client portal routes.
type Handler struct {
	logger    *slog.Logger
	customers CustomerFinder
	quotes    QuoteSource
	orders    OrderSource
	renderer  quotations.Renderer
	tokens    *auth.ClientTokens
	validator *validator.Validate
}

// NewHandler constructs a portal handler.
func NewHandler(logger *slog.Logger, customers CustomerFinder, quotes QuoteSource, orders OrderSource, renderer quotations.Renderer, tokens *auth.ClientTokens) *Handler {
	return &Handler{
		logger:    logger,
		customers: customers,
		quotes:    quotes,
		orders:    orders,
		renderer:  renderer,
		tokens:    tokens,
		validator: validator.New(),
	}
}

// MountRoutes registers portal routes under the caller's prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Route("/{clientID}", func(r chi.Router) {
		r.Use(h.tokens.RequireClient("clientID"))
		r.Get("/quotes", h.listQuotes)
		r.Get("/orders", h.listOrders)
		r.Get("/quote/{quoteID}/pdf", h.quotePDF)
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.customers.FindByNIT(r.Context(), req.NitCI)
	if err != nil {
		if errors.Is(err, customers.ErrNotFound) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Credenciales incorrectas")
			return
		}
		h.logger.Error("client login failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	token, expiresAt, err := h.tokens.Issue(customer.ID)
	if err != nil {
		h.logger.Error("issue client token", "customer_id", customer.ID, "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, LoginResponse{
		ID:          customer.ID,
		CompanyName: customer.CompanyName,
		Token:       token,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	customerID, _ := auth.ClientFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, h.quotes.ClientQuotes(r.Context(), customerID))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	customerID, _ := auth.ClientFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, h.orders.ClientOrders(r.Context(), customerID))
}

func (h *Handler) quotePDF(w http.ResponseWriter, r *http.Request) {
	customerID, _ := auth.ClientFromContext(r.Context())
	quoteID, err := httpx.IDParam(r, "quoteID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	detail, err := h.quotes.ClientDocument(r.Context(), customerID, quoteID)
	if err != nil {
		if errors.Is(err, quotations.ErrDocumentDenied) {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "Acceso denegado")
			return
		}
		h.logger.Error("load client quote", "customer_id", customerID, "quote_id", quoteID, "error", err)
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.renderer.RenderQuote(r.Context(), detail)
	if err != nil {
		h.logger.Error("render client quote", "quote_id", quoteID, "error", err)
		httpx.RespondError(w, err)
		return
	}
	quotations.WritePDF(w, detail.Number, pdf)
}
