package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genuino/cotizaciones/internal/platform/db"
	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/sales/quotations"
	"github.com/genuino/cotizaciones/internal/shared"
)

var (
	ErrNotFound      = fmt.Errorf("order %w", httpx.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("an order already exists for this quote: %w", httpx.ErrDuplicate)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Order, error)
	LockQuote(ctx context.Context, quoteID int64) (QuoteRef, error)
	Create(ctx context.Context, quoteID int64, status Status) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	ListActive(ctx context.Context) ([]ActiveOrder, error)
	ListForCustomer(ctx context.Context, customerID int64) ([]ClientOrder, error)
	Audit(ctx context.Context, log shared.AuditLog) error
}

type repository struct {
	db    db.DBTX
	pool  *pgxpool.Pool
	audit *shared.AuditLogger
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool, audit: shared.NewAuditLogger(pool)}
}

// WithTx runs at ReadCommitted so LockQuote waits for a concurrent decision
// and then reads its committed status instead of failing to serialize.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithReadCommittedTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool, audit: r.audit.WithTx(tx)})
	})
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	var status string
	err := r.db.QueryRow(ctx, `
		SELECT id, quote_id, order_status, last_update, created_at
		FROM orders WHERE id = $1`, id).Scan(&o.ID, &o.QuoteID, &status, &o.LastUpdate, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	o.Status = Status(status)
	o.StatusLabel = o.Status.Label()
	return &o, nil
}

// LockQuote reads the quote with FOR SHARE so its status cannot change
// before the surrounding transaction ends.
func (r *repository) LockQuote(ctx context.Context, quoteID int64) (QuoteRef, error) {
	var ref QuoteRef
	var status string
	err := r.db.QueryRow(ctx, `
		SELECT id, quote_number, status FROM quotes WHERE id = $1 FOR SHARE`, quoteID).Scan(&ref.ID, &ref.Number, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QuoteRef{}, ErrQuoteNotFound
		}
		return QuoteRef{}, fmt.Errorf("lock quote: %w", err)
	}
	ref.Status = quotations.Status(status)
	return ref, nil
}

func (r *repository) Create(ctx context.Context, quoteID int64, status Status) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (quote_id, order_status) VALUES ($1, $2)
		RETURNING id`, quoteID, string(status)).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET order_status = $2, last_update = NOW()
		WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListActive(ctx context.Context) ([]ActiveOrder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.order_status, q.id, q.quote_number, c.company_name, u.fullname, o.last_update
		FROM orders o
		JOIN quotes q ON q.id = o.quote_id
		JOIN customers c ON c.id = q.customer_id
		JOIN users u ON u.id = q.user_id
		WHERE o.order_status <> $1
		ORDER BY o.last_update DESC, o.id DESC`, string(StatusReadyForDelivery))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ActiveOrder{}
	for rows.Next() {
		var o ActiveOrder
		var status string
		if err := rows.Scan(&o.ID, &status, &o.QuoteID, &o.QuoteNumber, &o.CompanyName, &o.VendorName, &o.LastUpdate); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		o.StatusLabel = o.Status.Label()
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repository) ListForCustomer(ctx context.Context, customerID int64) ([]ClientOrder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, q.quote_number, q.created_at, o.order_status
		FROM orders o
		JOIN quotes q ON q.id = o.quote_id
		WHERE q.customer_id = $1
		ORDER BY q.created_at DESC, o.id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ClientOrder{}
	for rows.Next() {
		var o ClientOrder
		var status string
		if err := rows.Scan(&o.ID, &o.QuoteNumber, &o.QuoteCreatedAt, &status); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		o.StatusLabel = o.Status.Label()
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repository) Audit(ctx context.Context, log shared.AuditLog) error {
	return r.audit.Record(ctx, log)
}
