package shared

import (
	"context"
	"errors"
	"time"

	"github.com/genuino/cotizaciones/internal/platform/db"
)

// ApprovalAction enumerates approval log actions.
type ApprovalAction string

const (
	// ApprovalSubmit marks a quote that entered the approval queue.
	ApprovalSubmit ApprovalAction = "SUBMIT"
	// ApprovalApprove marks an approve action.
	ApprovalApprove ApprovalAction = "APPROVE"
	// ApprovalReject marks a reject action.
	ApprovalReject ApprovalAction = "REJECT"
)

// ApprovalLog represents a single approval record.
type ApprovalLog struct {
	ID      int64          `json:"id"`
	QuoteID int64          `json:"quote_id"`
	ActorID int64          `json:"actor_id"`
	Action  ApprovalAction `json:"action"`
	Note    string         `json:"note,omitempty"`
	At      time.Time      `json:"at"`
}

// ApprovalRecorder persists quote approval history.
type ApprovalRecorder struct {
	db db.DBTX
}

// NewApprovalRecorder constructs ApprovalRecorder.
func NewApprovalRecorder(conn db.DBTX) *ApprovalRecorder {
	return &ApprovalRecorder{db: conn}
}

// WithTx returns a recorder bound to tx.
func (r *ApprovalRecorder) WithTx(tx db.DBTX) *ApprovalRecorder {
	if r == nil {
		return nil
	}
	return &ApprovalRecorder{db: tx}
}

// Record writes approval entry to database.
func (r *ApprovalRecorder) Record(ctx context.Context, log ApprovalLog) error {
	if r == nil || r.db == nil {
		return errors.New("approval recorder not initialised")
	}
	if log.QuoteID == 0 {
		return errors.New("approval quote id required")
	}
	if log.ActorID == 0 {
		return errors.New("approval actor required")
	}
	if log.Action == "" {
		return errors.New("approval action required")
	}
	var at *time.Time
	if !log.At.IsZero() {
		at = &log.At
	}
	_, err := r.db.Exec(ctx, `INSERT INTO quote_approvals (quote_id, actor_id, action, note, at)
VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))`, log.QuoteID, log.ActorID, string(log.Action), log.Note, at)
	return err
}

// List returns the approval history of a quote, oldest first.
func (r *ApprovalRecorder) List(ctx context.Context, quoteID int64) ([]ApprovalLog, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("approval recorder not initialised")
	}
	rows, err := r.db.Query(ctx, `SELECT id, quote_id, actor_id, action, note, at
FROM quote_approvals WHERE quote_id=$1 ORDER BY at ASC, id ASC`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []ApprovalLog{}
	for rows.Next() {
		var l ApprovalLog
		var action string
		if err := rows.Scan(&l.ID, &l.QuoteID, &l.ActorID, &action, &l.Note, &l.At); err != nil {
			return nil, err
		}
		l.Action = ApprovalAction(action)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
