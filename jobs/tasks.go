package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskQuoteDecision notifies a quote creator that a manager decided on it.
	TaskQuoteDecision = "quote:decision"
	// TaskPendingDigest mails managers the number of quotes awaiting approval.
	TaskPendingDigest = "quote:pending_digest"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// QuoteDecisionPayload identifies the decided quote.
type QuoteDecisionPayload struct {
	QuoteID int64  `json:"quote_id"`
	Status  string `json:"status"`
}

// PendingDigestPayload carries no data; the digest reads current state.
type PendingDigestPayload struct{}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewQuoteDecisionTask builds the decision notification task.
func NewQuoteDecisionTask(payload QuoteDecisionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuoteDecision, data, asynq.MaxRetry(5)), nil
}

// NewPendingDigestTask builds the periodic digest task.
func NewPendingDigestTask() (*asynq.Task, error) {
	data, err := json.Marshal(PendingDigestPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPendingDigest, data), nil
}
