package jobmetrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for cotizaciones_jobs_total.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight *prometheus.GaugeVec
	emails   *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job collectors. A nil registerer selects the
// process-wide default registry, registered only once.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = register(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return register(registerer)
}

// Outcome classifies a handler result. Errors wrapping asynq.SkipRetry are
// dropped by the queue and count as skipped rather than failed.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, asynq.SkipRetry):
		return OutcomeSkipped
	default:
		return OutcomeFailure
	}
}

// Middleware instruments every task processed by an asynq.ServeMux, labelled
// by task type.
func (m *Metrics) Middleware(next asynq.Handler) asynq.Handler {
	if m == nil {
		return next
	}
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		job := t.Type()
		m.inflight.WithLabelValues(job).Inc()
		start := time.Now()

		err := next.ProcessTask(ctx, t)

		m.inflight.WithLabelValues(job).Dec()
		m.observe(job, time.Since(start), err)
		return err
	})
}

func (m *Metrics) observe(job string, elapsed time.Duration, err error) {
	outcome := Outcome(err)
	if outcome == OutcomeFailure {
		m.failures.WithLabelValues(job).Inc()
	}
	m.runs.WithLabelValues(job, outcome).Inc()
	m.duration.WithLabelValues(job).Observe(elapsed.Seconds())
}

// AddEmails counts messages handed to the mail relay by job.
func (m *Metrics) AddEmails(job string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.emails.WithLabelValues(job).Add(float64(count))
}

func register(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cotizaciones_jobs_total",
			Help: "Processed tasks by type and outcome.",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cotizaciones_jobs_failures_total",
			Help: "Tasks that returned a retryable error.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cotizaciones_job_duration_seconds",
			Help:    "Task processing time.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"job"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cotizaciones_jobs_in_flight",
			Help: "Tasks currently being processed.",
		}, []string{"job"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cotizaciones_emails_sent_total",
			Help: "Emails handed to the SMTP relay grouped by job.",
		}, []string{"job"}),
	}
	registerer.MustRegister(m.runs, m.failures, m.duration, m.inflight, m.emails)
	return m
}
