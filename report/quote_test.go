package report

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genuino/cotizaciones/internal/sales/quotations"
	"github.com/genuino/cotizaciones/internal/view"
)

func strPtr(s string) *string { return &s }

func sampleDetail() *quotations.Detail {
	return &quotations.Detail{
		Quote: quotations.Quote{
			ID:        7,
			Number:    "COT-2025-0007",
			Total:     decimal.RequireFromString("12500.50"),
			Status:    quotations.StatusApproved,
			CreatedAt: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
			Items: []quotations.Item{
				{TypeID: 2, TypeName: "Servicios", Description: "Instalacion", Quantity: 1, UnitPrice: decimal.NewFromInt(500), Subtotal: decimal.NewFromInt(500)},
				{TypeID: 1, TypeName: "Equipos", Code: strPtr("EQ-1"), Description: "Servidor", Quantity: 2, UnitPrice: decimal.NewFromInt(5000), Subtotal: decimal.NewFromInt(10000)},
				{TypeID: 1, TypeName: "Equipos", Description: "Switch", Quantity: 1, UnitPrice: decimal.RequireFromString("2000.50"), Subtotal: decimal.RequireFromString("2000.50")},
			},
		},
		CustomerName:  "Acme SRL",
		CustomerNIT:   "1020304",
		ContactPerson: strPtr("Ana Rojas"),
		VendorName:    "Carlos Vendedor",
	}
}

func newRenderer(t *testing.T, pdf HTMLRenderer) *QuoteRenderer {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	return NewQuoteRenderer(pdf, engine, Company{Name: "Genuino Importaciones", TaxID: "123456789", City: "Cochabamba"}, "Genuino PRO+")
}

func TestBuildDocumentGroupsByTypeOrder(t *testing.T) {
	doc := newRenderer(t, nil).BuildDocument(sampleDetail())

	require.Len(t, doc.Groups, 2)
	assert.Equal(t, "Equipos", doc.Groups[0].TypeName)
	assert.Len(t, doc.Groups[0].Lines, 2)
	assert.Equal(t, "EQ-1", doc.Groups[0].Lines[0].Code)
	assert.True(t, decimal.RequireFromString("12000.50").Equal(doc.Groups[0].Subtotal))
	assert.Equal(t, "Servicios", doc.Groups[1].TypeName)
	assert.True(t, decimal.NewFromInt(500).Equal(doc.Groups[1].Subtotal))
	assert.Equal(t, "Ana Rojas", doc.Customer.Contact)
	assert.Empty(t, doc.Customer.Email)
	assert.Equal(t, "Aprobada", doc.StatusLabel)
}

func TestRenderQuoteHTML(t *testing.T) {
	html, err := newRenderer(t, nil).RenderQuoteHTML(sampleDetail())
	require.NoError(t, err)

	assert.Contains(t, html, "COT-2025-0007")
	assert.Contains(t, html, "14/03/2025")
	assert.Contains(t, html, "Acme SRL")
	assert.Contains(t, html, "TOTAL GENERAL Bs. 12.500,50")
	assert.Less(t, strings.Index(html, "Equipos"), strings.Index(html, "Servicios"))
}

func TestRenderQuoteSendsHTMLToGotenberg(t *testing.T) {
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		body, _ := io.ReadAll(file)
		received = string(body)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	pdf, err := newRenderer(t, NewClient(srv.URL)).RenderQuote(context.Background(), sampleDetail())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.Contains(t, received, "Servidor")
}

func TestRenderQuoteGotenbergFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newRenderer(t, NewClient(srv.URL)).RenderQuote(context.Background(), sampleDetail())
	require.ErrorIs(t, err, ErrRenderFailed)
	assert.Contains(t, err.Error(), "COT-2025-0007")
}

func TestPingHandler(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := NewHandler(NewClient(srv.URL), discardLogger())
	rec := httptest.NewRecorder()
	h.ping(rec, httptest.NewRequest(http.MethodGet, "/report/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	healthy = false
	rec = httptest.NewRecorder()
	h.ping(rec, httptest.NewRequest(http.MethodGet, "/report/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
