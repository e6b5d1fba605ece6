package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/genuino/cotizaciones/internal/app"
	"github.com/genuino/cotizaciones/internal/auth"
	"github.com/genuino/cotizaciones/internal/events"
	"github.com/genuino/cotizaciones/internal/observability"
	"github.com/genuino/cotizaciones/internal/platform/cache"
	"github.com/genuino/cotizaciones/internal/platform/db"
	"github.com/genuino/cotizaciones/internal/portal"
	"github.com/genuino/cotizaciones/internal/rbac"
	"github.com/genuino/cotizaciones/internal/reporting"
	"github.com/genuino/cotizaciones/internal/sales/catalog"
	"github.com/genuino/cotizaciones/internal/sales/customers"
	"github.com/genuino/cotizaciones/internal/sales/orders"
	"github.com/genuino/cotizaciones/internal/sales/quotations"
	"github.com/genuino/cotizaciones/internal/sales/settings"
	"github.com/genuino/cotizaciones/internal/shared"
	"github.com/genuino/cotizaciones/internal/users"
	"github.com/genuino/cotizaciones/internal/view"
	"github.com/genuino/cotizaciones/jobs"
	"github.com/genuino/cotizaciones/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PoolOptions("cotizaciones"))
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "cotizaciones_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.EventsEnabled() {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Error("connect kafka", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := kafka.Close(); err != nil {
				logger.Warn("kafka close", slog.Any("error", err))
			}
		}()
		publisher = kafka
	}

	redisOpts := cfg.RedisOptions().AsynqOpt()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	reportClient := report.NewClient(cfg.GotenbergURL)
	quoteRenderer := report.NewQuoteRenderer(reportClient, templates, report.Company{
		Name:  cfg.CompanyName,
		TaxID: cfg.CompanyTaxID,
		City:  cfg.CompanyCity,
	}, cfg.BrandName)

	rbacService := rbac.NewService(rbac.NewRepository(dbpool))
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, rbacMiddleware)
	clientTokens := auth.NewClientTokens(cfg.ClientTokenSecret, cfg.ClientTokenTTL)

	customerService := customers.NewService(customers.NewRepository(dbpool))
	catalogService := catalog.NewService(catalog.NewRepository(dbpool), logger)
	settingsService := settings.NewService(settings.NewRepository(dbpool), logger)

	quoteRepo := quotations.NewRepository(dbpool)
	quoteService := quotations.NewService(quoteRepo, logger, quotations.Options{
		NumberYear: cfg.QuoteNumberYear,
		Events:     publisher,
		Notifier:   jobClient,
		Metrics:    metrics,
	})
	orderService := orders.NewService(orders.NewRepository(dbpool), logger, publisher, metrics)
	reportService := reporting.NewService(reporting.NewRepository(dbpool), logger)
	userService := users.NewService(users.NewRepository(dbpool))

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Metrics:            metrics,
		AuthHandler:        authHandler,
		CustomersHandler:   customers.NewHandler(logger, customerService, rbacMiddleware),
		CatalogHandler:     catalog.NewHandler(logger, catalogService, rbacMiddleware),
		SettingsHandler:    settings.NewHandler(logger, settingsService, rbacMiddleware),
		QuotesHandler:      quotations.NewHandler(logger, quoteService, quoteRenderer, rbacMiddleware),
		OrdersHandler:      orders.NewHandler(logger, orderService, rbacMiddleware),
		ReportsHandler:     reporting.NewHandler(logger, reportService, rbacMiddleware),
		UsersHandler:       users.NewHandler(logger, userService, rbacMiddleware),
		PortalHandler:      portal.NewHandler(logger, customerService, quoteService, orderService, quoteRenderer, clientTokens),
		PermissionsHandler: rbac.NewPermissionsHandler(rbacMiddleware),
		ReportHandler:      report.NewHandler(reportClient, logger),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
