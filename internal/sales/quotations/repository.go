package quotations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/genuino/cotizaciones/internal/platform/db"
	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/sales/settings"
	"github.com/genuino/cotizaciones/internal/shared"
)

var (
	ErrNotFound        = fmt.Errorf("quote %w", httpx.ErrNotFound)
	ErrUnknownCustomer = fmt.Errorf("customer does not exist: %w", httpx.ErrValidation)
	ErrUnknownType     = fmt.Errorf("catalog type does not exist: %w", httpx.ErrValidation)
)

// Quote numbers come from one counter shared by every year label, so the
// document_sequences period is fixed.
const (
	sequenceDocType = "COT"
	sequencePeriod  = "global"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	CustomerExists(ctx context.Context, customerID int64) (bool, error)
	ApprovalThreshold(ctx context.Context) (decimal.Decimal, error)
	NextNumber(ctx context.Context, year string) (string, error)
	Create(ctx context.Context, quote Quote) (int64, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	Get(ctx context.Context, id int64) (*Quote, error)
	Detail(ctx context.Context, id int64) (*Detail, error)
	SetStatus(ctx context.Context, id int64, status Status, reason *string) error
	ListByUser(ctx context.Context, userID int64) ([]Summary, error)
	ListAll(ctx context.Context) ([]Summary, error)
	ListByStatus(ctx context.Context, status Status) ([]Summary, error)
	ListApprovedWithoutOrder(ctx context.Context) ([]Summary, error)
	ListApprovedForCustomer(ctx context.Context, customerID int64) ([]ClientQuote, error)
	CountPending(ctx context.Context) (int, error)
	RecordApproval(ctx context.Context, log shared.ApprovalLog) error
	History(ctx context.Context, quoteID int64) ([]shared.ApprovalLog, error)
	Audit(ctx context.Context, log shared.AuditLog) error
}

type repository struct {
	db        db.DBTX
	pool      *pgxpool.Pool
	approvals *shared.ApprovalRecorder
	audit     *shared.AuditLogger
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{
		db:        pool,
		pool:      pool,
		approvals: shared.NewApprovalRecorder(pool),
		audit:     shared.NewAuditLogger(pool),
	}
}

// WithTx runs fn at ReadCommitted so concurrent creators queue on the
// document_sequences row lock instead of failing with a serialization error.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithReadCommittedTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{
			db:        tx,
			pool:      r.pool,
			approvals: r.approvals.WithTx(tx),
			audit:     r.audit.WithTx(tx),
		})
	})
}

func (r *repository) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, customerID).Scan(&exists)
	return exists, err
}

func (r *repository) ApprovalThreshold(ctx context.Context) (decimal.Decimal, error) {
	return settings.ReadThreshold(ctx, r.db)
}

// NextNumber bumps the quote sequence and formats it with year. The upsert
// holds the row lock until the surrounding transaction ends, so numbers are
// gapless when it rolls back.
func (r *repository) NextNumber(ctx context.Context, year string) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`, sequenceDocType, sequencePeriod).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next quote number: %w", err)
	}
	return FormatNumber(year, seq), nil
}

func (r *repository) Create(ctx context.Context, q Quote) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotes (quote_number, customer_id, user_id, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		q.Number, q.CustomerID, q.UserID, q.Total, string(q.Status),
	).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) && db.ConstraintName(err) == "quotes_customer_id_fkey" {
			return 0, ErrUnknownCustomer
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quote_items (quote_id, type_id, code, description, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		item.QuoteID, item.TypeID, item.Code, item.Description, item.Quantity, item.UnitPrice, item.Subtotal,
	).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, ErrUnknownType
		}
		return 0, err
	}
	return id, nil
}

const quoteColumns = `q.id, q.quote_number, q.customer_id, q.user_id, q.total_amount, q.status, q.rejection_reason, q.created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Quote, error) {
	var q Quote
	var status string
	err := r.db.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes q WHERE q.id = $1`, id).Scan(
		&q.ID, &q.Number, &q.CustomerID, &q.UserID, &q.Total, &status, &q.RejectionReason, &q.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	q.Status = Status(status)
	q.StatusLabel = q.Status.Label()
	return &q, nil
}

func (r *repository) Detail(ctx context.Context, id int64) (*Detail, error) {
	var d Detail
	var status string
	err := r.db.QueryRow(ctx, `
		SELECT `+quoteColumns+`, c.company_name, c.nit_ci, c.contact_person, c.contact_email, u.fullname
		FROM quotes q
		JOIN customers c ON c.id = q.customer_id
		JOIN users u ON u.id = q.user_id
		WHERE q.id = $1`, id).Scan(
		&d.ID, &d.Number, &d.CustomerID, &d.UserID, &d.Total, &status, &d.RejectionReason, &d.CreatedAt,
		&d.CustomerName, &d.CustomerNIT, &d.ContactPerson, &d.ContactEmail, &d.VendorName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.Status = Status(status)
	d.StatusLabel = d.Status.Label()

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Items = items
	return &d, nil
}

func (r *repository) items(ctx context.Context, quoteID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT qi.id, qi.quote_id, qi.type_id, ct.name, qi.code, qi.description, qi.quantity, qi.unit_price, qi.subtotal
		FROM quote_items qi
		JOIN catalog_types ct ON ct.id = qi.type_id
		WHERE qi.quote_id = $1
		ORDER BY qi.type_id, qi.id`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.TypeID, &it.TypeName, &it.Code, &it.Description, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetStatus overwrites the status. A nil reason leaves rejection_reason untouched.
func (r *repository) SetStatus(ctx context.Context, id int64, status Status, reason *string) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if reason == nil {
		tag, err = r.db.Exec(ctx, `UPDATE quotes SET status = $2 WHERE id = $1`, id, string(status))
	} else {
		tag, err = r.db.Exec(ctx, `UPDATE quotes SET status = $2, rejection_reason = $3 WHERE id = $1`, id, string(status), *reason)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const summarySelect = `
	SELECT q.id, q.quote_number, q.created_at, q.total_amount, q.status, q.rejection_reason,
	       c.company_name, u.id, u.fullname
	FROM quotes q
	JOIN customers c ON c.id = q.customer_id
	JOIN users u ON u.id = q.user_id`

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Summary, error) {
	return r.summaries(ctx, summarySelect+` WHERE q.user_id = $1 ORDER BY q.created_at DESC, q.id DESC`, userID)
}

func (r *repository) ListAll(ctx context.Context) ([]Summary, error) {
	return r.summaries(ctx, summarySelect+` ORDER BY q.created_at DESC, q.id DESC`)
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Summary, error) {
	return r.summaries(ctx, summarySelect+` WHERE q.status = $1 ORDER BY q.created_at DESC, q.id DESC`, string(status))
}

func (r *repository) ListApprovedWithoutOrder(ctx context.Context) ([]Summary, error) {
	return r.summaries(ctx, summarySelect+`
		LEFT JOIN orders o ON o.quote_id = q.id
		WHERE q.status = $1 AND o.id IS NULL
		ORDER BY q.created_at DESC, q.id DESC`, string(StatusApproved))
}

func (r *repository) summaries(ctx context.Context, query string, args ...any) ([]Summary, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		var status string
		if err := rows.Scan(&s.ID, &s.Number, &s.CreatedAt, &s.Total, &status, &s.RejectionReason,
			&s.CustomerName, &s.VendorID, &s.VendorName); err != nil {
			return nil, err
		}
		s.Status = Status(status)
		s.StatusLabel = s.Status.Label()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) ListApprovedForCustomer(ctx context.Context, customerID int64) ([]ClientQuote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quote_number, created_at, total_amount, status
		FROM quotes
		WHERE customer_id = $1 AND status = $2
		ORDER BY created_at DESC, id DESC`, customerID, string(StatusApproved))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ClientQuote{}
	for rows.Next() {
		var q ClientQuote
		var status string
		if err := rows.Scan(&q.ID, &q.Number, &q.CreatedAt, &q.Total, &status); err != nil {
			return nil, err
		}
		q.Status = Status(status)
		q.StatusLabel = q.Status.Label()
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *repository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE status = $1`, string(StatusPendingApproval)).Scan(&n)
	return n, err
}

func (r *repository) RecordApproval(ctx context.Context, log shared.ApprovalLog) error {
	return r.approvals.Record(ctx, log)
}

func (r *repository) History(ctx context.Context, quoteID int64) ([]shared.ApprovalLog, error) {
	return r.approvals.List(ctx, quoteID)
}

func (r *repository) Audit(ctx context.Context, log shared.AuditLog) error {
	return r.audit.Record(ctx, log)
}
