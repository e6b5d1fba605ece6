package reporting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/shared"
)

type mockRepo struct {
	mu          sync.Mutex
	monthly     []MonthTotal
	vendorRows  []VendorMonthTotal
	counts      map[string][]VendorCount
	monthlyErr  error
	countsErr   map[string]error
	countsCalls int
}

func (m *mockRepo) MonthlySales(ctx context.Context) ([]MonthTotal, error) {
	return m.monthly, m.monthlyErr
}

func (m *mockRepo) VendorMonthlySales(ctx context.Context) ([]VendorMonthTotal, error) {
	return m.vendorRows, nil
}

func (m *mockRepo) QuoteCountsByVendor(ctx context.Context, status string) ([]VendorCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countsCalls++
	if err := m.countsErr[status]; err != nil {
		return nil, err
	}
	return m.counts[status], nil
}

func amount(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func sampleRepo() *mockRepo {
	return &mockRepo{
		monthly: []MonthTotal{{Month: "2025-01", Total: amount("250.00")}, {Month: "2025-02", Total: amount("1200.50")}},
		vendorRows: []VendorMonthTotal{
			{Month: "2025-01", Vendor: "Luis", Total: amount("250.00")},
			{Month: "2025-02", Vendor: "Ana", Total: amount("1000.00")},
			{Month: "2025-02", Vendor: "Luis", Total: amount("200.50")},
		},
		counts: map[string][]VendorCount{
			"":         {{Vendor: "Luis", Count: 5}, {Vendor: "Ana", Count: 2}},
			"REJECTED": {{Vendor: "Luis", Count: 1}},
		},
		countsErr: map[string]error{},
	}
}

func TestPivotZeroFills(t *testing.T) {
	svc := NewService(sampleRepo(), testLogger())
	tab, err := svc.SalesByMonthByVendor(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-01", "2025-02"}, tab.Labels)
	require.Len(t, tab.Datasets, 2)
	assert.Equal(t, "Ana", tab.Datasets[0].Label)
	assert.True(t, tab.Datasets[0].Data[0].IsZero())
	assert.True(t, tab.Datasets[0].Data[1].Equal(amount("1000")))
	assert.Equal(t, "Luis", tab.Datasets[1].Label)
	assert.True(t, tab.Datasets[1].Data[1].Equal(amount("200.50")))
}

func TestRejectionsDegradeToEmpty(t *testing.T) {
	repo := sampleRepo()
	repo.countsErr["REJECTED"] = errors.New("relation does not exist")
	series := NewService(repo, testLogger()).RejectionsByVendor(context.Background())
	assert.NotNil(t, series.Labels)
	assert.Empty(t, series.Labels)
	assert.Empty(t, series.Data)
}

func TestSummaryRunsAllReports(t *testing.T) {
	repo := sampleRepo()
	summary, err := NewService(repo, testLogger()).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01", "2025-02"}, summary.SalesByMonth.Labels)
	assert.Equal(t, []int64{5, 2}, summary.QuotesByVendor.Data)
	assert.Equal(t, []string{"Luis"}, summary.RejectionsByVendor.Labels)
	assert.Len(t, summary.SalesByMonthByVendor.Datasets, 2)
	assert.Equal(t, 2, repo.countsCalls)

	repo.monthlyErr = errors.New("boom")
	_, err = NewService(repo, testLogger()).Summary(context.Background())
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	h := NewHandler(testLogger(), NewService(sampleRepo(), testLogger()), rbac.Middleware{})
	serve := func(perms []string, path string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 1, Permissions: perms})))
			})
		})
		h.MountRoutes(r)
		res := httptest.NewRecorder()
		r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		return res
	}
	manager := shared.SalesManagerScopes()

	res := serve(manager, "/reports/sales-by-month")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"labels":["2025-01","2025-02"],"data":["250","1200.5"]}`, res.Body.String())

	res = serve(manager, "/reports/sales-by-month-by-vendor?format=csv")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "text/csv; charset=utf-8", res.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(res.Body.String()), "\n")
	assert.Equal(t, "Vendedor,2025-01,2025-02", lines[0])
	assert.Equal(t, "Ana,0.00,1000.00", lines[1])

	res = serve(manager, "/reports/summary")
	assert.Equal(t, http.StatusOK, res.Code)

	res = serve(shared.SalesRepScopes(), "/reports/quotes-by-vendor")
	assert.Equal(t, http.StatusForbidden, res.Code)
}
