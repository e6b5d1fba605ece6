package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/genuino/cotizaciones/internal/app"
	jobmetrics "github.com/genuino/cotizaciones/internal/jobs"
	"github.com/genuino/cotizaciones/internal/platform/db"
	"github.com/genuino/cotizaciones/internal/sales/quotations"
	"github.com/genuino/cotizaciones/internal/users"
	"github.com/genuino/cotizaciones/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PoolOptions("cotizaciones-worker"))
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)
	mailer, err := jobs.NewSMTPMailer(jobs.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		TLS:      cfg.SMTPTLS,
	})
	if err != nil {
		logger.Error("init mailer", slog.Any("error", err))
		os.Exit(1)
	}

	quoteService := quotations.NewService(quotations.NewRepository(pool), logger, quotations.Options{NumberYear: cfg.QuoteNumberYear})
	userService := users.NewService(users.NewRepository(pool))

	decisionJob := jobs.NewQuoteDecisionJob(quoteService, userService, mailer, logger, metrics)
	digestJob := jobs.NewPendingDigestJob(quoteService, userService, mailer, logger, metrics)
	mailJob := &jobs.MailJob{Mailer: mailer, Logger: logger, Metrics: metrics}

	digestTask, err := jobs.NewPendingDigestTask()
	if err != nil {
		logger.Error("build digest task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cfg.RedisOptions().AsynqOpt(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Middleware:  []asynq.MiddlewareFunc{metrics.Middleware},
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailJob.Handle},
			{Type: jobs.TaskQuoteDecision, Handler: decisionJob.Handle},
			{Type: jobs.TaskPendingDigest, Handler: digestJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.PendingDigestCron, Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return worker.Run(groupCtx)
	})
	group.Go(func() error {
		logger.Info("worker metrics listening", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
