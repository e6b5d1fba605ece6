package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/genuino/cotizaciones/internal/jobs"
	"github.com/genuino/cotizaciones/internal/sales/quotations"
	"github.com/genuino/cotizaciones/internal/users"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// QuoteReader loads quote details.
type QuoteReader interface {
	Get(ctx context.Context, id int64) (*quotations.Detail, error)
}

// UserReader loads staff accounts.
type UserReader interface {
	GetUser(ctx context.Context, id int64) (*users.User, error)
}

// ManagerDirectory lists who receives the approval digest.
type ManagerDirectory interface {
	ManagerEmails(ctx context.Context) ([]string, error)
}

// PendingCounter counts quotes awaiting approval.
type PendingCounter interface {
	PendingCount(ctx context.Context) (int, error)
}

// MailJob delivers queued mail:send tasks.
type MailJob struct {
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes TaskTypeSendEmail tasks.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode mail payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := j.Mailer.Send(ctx, payload); err != nil {
		loggerOrDefault(j.Logger).Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	metricsOrDefault(j.Metrics).AddEmails(TaskTypeSendEmail, 1)
	return nil
}

// QuoteDecisionJob emails the quote creator once a manager approves or
// rejects the quote.
type QuoteDecisionJob struct {
	Quotes  QuoteReader
	Users   UserReader
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewQuoteDecisionJob wires dependencies for the decision handler.
func NewQuoteDecisionJob(quotes QuoteReader, users UserReader, mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *QuoteDecisionJob {
	return &QuoteDecisionJob{Quotes: quotes, Users: users, Mailer: mailer, Logger: logger, Metrics: metrics}
}

// Handle processes TaskQuoteDecision tasks.
func (j *QuoteDecisionJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("quote decision: handler not configured")
	}
	var payload QuoteDecisionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.QuoteID <= 0 {
		return fmt.Errorf("decode quote decision payload: %w", asynq.SkipRetry)
	}
	logger := loggerOrDefault(j.Logger).With(slog.Int64("quote_id", payload.QuoteID))

	quote, err := j.Quotes.Get(ctx, payload.QuoteID)
	if err != nil {
		if errors.Is(err, quotations.ErrNotFound) {
			logger.Warn("decided quote no longer exists")
			return nil
		}
		return err
	}
	if quote.Status == quotations.StatusPendingApproval {
		logger.Warn("quote is still pending, skipping notification")
		return nil
	}
	creator, err := j.Users.GetUser(ctx, quote.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			logger.Warn("quote creator not found", slog.Int64("user_id", quote.UserID))
			return nil
		}
		return err
	}
	if err := j.Mailer.Send(ctx, DecisionEmail(quote, creator)); err != nil {
		logger.Error("send decision email", slog.Any("error", err))
		return err
	}
	metricsOrDefault(j.Metrics).AddEmails(TaskQuoteDecision, 1)
	logger.Info("decision email sent", slog.String("status", string(quote.Status)))
	return nil
}

// DecisionEmail composes the message sent to the quote creator.
func DecisionEmail(quote *quotations.Detail, creator *users.User) SendEmailPayload {
	label := strings.ToLower(quote.Status.Label())
	var body strings.Builder
	fmt.Fprintf(&body, "Hola %s,\n\n", creator.Fullname)
	fmt.Fprintf(&body, "La cotización %s para %s por Bs. %s fue %s.\n", quote.Number, quote.CustomerName, quote.Total.StringFixed(2), label)
	if quote.Status == quotations.StatusRejected && quote.RejectionReason != nil {
		fmt.Fprintf(&body, "Motivo: %s\n", *quote.RejectionReason)
	}
	return SendEmailPayload{
		To:      creator.Email,
		Subject: fmt.Sprintf("Cotización %s %s", quote.Number, label),
		Body:    body.String(),
	}
}

// PendingDigestJob mails every active manager the pending approval count.
type PendingDigestJob struct {
	Quotes   PendingCounter
	Managers ManagerDirectory
	Mailer   Mailer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewPendingDigestJob wires dependencies for the digest handler.
func NewPendingDigestJob(quotes PendingCounter, managers ManagerDirectory, mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *PendingDigestJob {
	return &PendingDigestJob{Quotes: quotes, Managers: managers, Mailer: mailer, Logger: logger, Metrics: metrics}
}

// Handle processes TaskPendingDigest tasks. Nothing is sent when no quote
// is pending.
func (j *PendingDigestJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil {
		return errors.New("pending digest: handler not configured")
	}
	logger := loggerOrDefault(j.Logger)

	count, err := j.Quotes.PendingCount(ctx)
	if err != nil {
		logger.Error("count pending quotes", slog.Any("error", err))
		return err
	}
	if count == 0 {
		logger.Info("no quotes pending approval")
		return nil
	}
	recipients, err := j.Managers.ManagerEmails(ctx)
	if err != nil {
		logger.Error("load manager emails", slog.Any("error", err))
		return err
	}
	subject := fmt.Sprintf("%d cotizaciones pendientes de aprobación", count)
	if count == 1 {
		subject = "1 cotización pendiente de aprobación"
	}
	var sendErr error
	sent := 0
	for _, to := range recipients {
		msg := SendEmailPayload{
			To:      to,
			Subject: subject,
			Body:    fmt.Sprintf("Cotizaciones pendientes de aprobación: %d\n", count),
		}
		if err := j.Mailer.Send(ctx, msg); err != nil {
			logger.Error("send digest", slog.String("to", to), slog.Any("error", err))
			sendErr = errors.Join(sendErr, err)
			continue
		}
		sent++
	}
	metricsOrDefault(j.Metrics).AddEmails(TaskPendingDigest, sent)
	logger.Info("pending digest sent", slog.Int("pending", count), slog.Int("recipients", sent))
	return sendErr
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
