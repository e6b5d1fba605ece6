package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genuino/cotizaciones/internal/auth"
	"github.com/genuino/cotizaciones/internal/observability"
	"github.com/genuino/cotizaciones/internal/portal"
	"github.com/genuino/cotizaciones/internal/sales/customers"
	"github.com/genuino/cotizaciones/internal/sales/orders"
	"github.com/genuino/cotizaciones/internal/sales/quotations"
	"github.com/genuino/cotizaciones/internal/shared"
	_ "github.com/genuino/cotizaciones/testing"
)

type noCustomers struct{}

func (noCustomers) FindByNIT(context.Context, string) (*customers.Customer, error) {
	return nil, customers.ErrNotFound
}

type noQuotes struct{}

func (noQuotes) ClientQuotes(context.Context, int64) []quotations.ClientQuote {
	return []quotations.ClientQuote{}
}

func (noQuotes) ClientDocument(context.Context, int64, int64) (*quotations.Detail, error) {
	return nil, quotations.ErrDocumentDenied
}

func (noQuotes) RenderQuote(context.Context, *quotations.Detail) ([]byte, error) {
	return nil, nil
}

type noOrders struct{}

func (noOrders) ClientOrders(context.Context, int64) []orders.ClientOrder {
	return []orders.ClientOrder{}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second}
	return NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: shared.NewSessionManager(client, "test_session", "secret", time.Hour, false),
		CSRFManager:    shared.NewCSRFManager("csrf-secret"),
		Metrics:        observability.NewMetrics(),
		PortalHandler: portal.NewHandler(logger, noCustomers{}, noQuotes{}, noOrders{}, noQuotes{},
			auth.NewClientTokens("client-secret", time.Hour)),
	})
}

func TestRouterHealthAndSecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cotizaciones_http_requests_total{code="200",route="/healthz"} 1`)
}

func TestRouterRequiresCSRFForStaffMutations(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouterExemptsClientPortalFromCSRF(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/client/login", strings.NewReader(`{"nit_ci":"000"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Credenciales incorrectas")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/client/1/quotes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
