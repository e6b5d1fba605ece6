package reporting

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/shared"
)

// Handler serves the report endpoints. Every report also renders as CSV
// with ?format=csv except the summary.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermReportView))
		r.Get("/reports/sales-by-month", h.salesByMonth)
		r.Get("/reports/sales-by-month-by-vendor", h.salesByMonthByVendor)
		r.Get("/reports/quotes-by-vendor", h.quotesByVendor)
		r.Get("/reports/rejections-by-vendor", h.rejectionsByVendor)
		r.Get("/reports/summary", h.summary)
	})
}

func (h *Handler) salesByMonth(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.SalesByMonth(r.Context())
	if err != nil {
		h.fail(w, "sales by month report", err)
		return
	}
	if wantsCSV(r) {
		h.writeCSV(w, "ventas-por-mes", func(buf *bytes.Buffer) error { return WriteAmountCSV(buf, "Mes", series) })
		return
	}
	httpx.JSON(w, http.StatusOK, series)
}

func (h *Handler) salesByMonthByVendor(w http.ResponseWriter, r *http.Request) {
	tab, err := h.service.SalesByMonthByVendor(r.Context())
	if err != nil {
		h.fail(w, "sales by month by vendor report", err)
		return
	}
	if wantsCSV(r) {
		h.writeCSV(w, "ventas-por-mes-por-vendedor", func(buf *bytes.Buffer) error { return WriteCrossTabCSV(buf, tab) })
		return
	}
	httpx.JSON(w, http.StatusOK, tab)
}

func (h *Handler) quotesByVendor(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.QuotesByVendor(r.Context())
	if err != nil {
		h.fail(w, "quotes by vendor report", err)
		return
	}
	if wantsCSV(r) {
		h.writeCSV(w, "cotizaciones-por-vendedor", func(buf *bytes.Buffer) error { return WriteCountCSV(buf, series) })
		return
	}
	httpx.JSON(w, http.StatusOK, series)
}

func (h *Handler) rejectionsByVendor(w http.ResponseWriter, r *http.Request) {
	series := h.service.RejectionsByVendor(r.Context())
	if wantsCSV(r) {
		h.writeCSV(w, "rechazos-por-vendedor", func(buf *bytes.Buffer) error { return WriteCountCSV(buf, series) })
		return
	}
	httpx.JSON(w, http.StatusOK, series)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, "report summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	httpx.RespondError(w, err)
}

func (h *Handler) writeCSV(w http.ResponseWriter, name string, write func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		h.fail(w, "write report csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}
