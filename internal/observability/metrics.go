package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics exposed on /metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	quotesCreated   *prometheus.CounterVec
	quoteDecisions  *prometheus.CounterVec
	ordersCreated   prometheus.Counter
	orderStatus     *prometheus.CounterVec
}

// NewMetrics builds a private registry with HTTP and business metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cotizaciones_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cotizaciones_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	quotesCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cotizaciones_quotes_created_total",
		Help: "Quotes created by initial status.",
	}, []string{"status"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cotizaciones_quote_decisions_total",
		Help: "Manager decisions on pending quotes.",
	}, []string{"decision"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cotizaciones_orders_created_total",
		Help: "Orders created from approved quotes.",
	})
	orderStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cotizaciones_order_status_changes_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	registry.MustRegister(
		requests, duration, quotesCreated, decisions, ordersCreated, orderStatus,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		quotesCreated:   quotesCreated,
		quoteDecisions:  decisions,
		ordersCreated:   ordersCreated,
		orderStatus:     orderStatus,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// QuoteCreated counts a new quote by its initial status.
func (m *Metrics) QuoteCreated(status string) {
	if m == nil {
		return
	}
	m.quotesCreated.WithLabelValues(status).Inc()
}

// QuoteDecided counts an approve or reject decision.
func (m *Metrics) QuoteDecided(decision string) {
	if m == nil {
		return
	}
	m.quoteDecisions.WithLabelValues(decision).Inc()
}

// OrderCreated counts a new order.
func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// OrderStatusChanged counts a status transition.
func (m *Metrics) OrderStatusChanged(status string) {
	if m == nil {
		return
	}
	m.orderStatus.WithLabelValues(status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
