package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/genuino/cotizaciones/internal/auth"
	"github.com/genuino/cotizaciones/internal/observability"
	"github.com/genuino/cotizaciones/internal/portal"
	"github.com/genuino/cotizaciones/internal/reporting"
	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/sales/catalog"
	"github.com/genuino/cotizaciones/internal/sales/customers"
	"github.com/genuino/cotizaciones/internal/sales/orders"
	"github.com/genuino/cotizaciones/internal/sales/quotations"
	"github.com/genuino/cotizaciones/internal/sales/settings"
	"github.com/genuino/cotizaciones/internal/shared"
	"github.com/genuino/cotizaciones/internal/users"
	"github.com/genuino/cotizaciones/jobs"
	"github.com/genuino/cotizaciones/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler        *auth.Handler
	CustomersHandler   *customers.Handler
	CatalogHandler     *catalog.Handler
	SettingsHandler    *settings.Handler
	QuotesHandler      *quotations.Handler
	OrdersHandler      *orders.Handler
	ReportsHandler     *reporting.Handler
	UsersHandler       *users.Handler
	PortalHandler      *portal.Handler
	PermissionsHandler *rbac.PermissionsHandler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		if params.CustomersHandler != nil {
			params.CustomersHandler.MountRoutes(r)
		}
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(r)
		}
		if params.SettingsHandler != nil {
			params.SettingsHandler.MountRoutes(r)
		}
		if params.QuotesHandler != nil {
			params.QuotesHandler.MountRoutes(r)
		}
		if params.OrdersHandler != nil {
			params.OrdersHandler.MountRoutes(r)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(r)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.PermissionsHandler != nil {
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		}
	})

	if params.PortalHandler != nil {
		r.Route("/client", params.PortalHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
