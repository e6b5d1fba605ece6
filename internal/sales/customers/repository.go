package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genuino/cotizaciones/internal/platform/db"
	"github.com/genuino/cotizaciones/internal/platform/httpx"
)

var (
	ErrNotFound      = fmt.Errorf("customer %w", httpx.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("customer nit/ci already registered: %w", httpx.ErrDuplicate)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Customer, error)
	GetByNIT(ctx context.Context, nitCI string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Create(ctx context.Context, customer Customer) (int64, error)
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const customerColumns = `id, company_name, nit_ci, address, contact_person, contact_email, contact_phone, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

func (r *repository) GetByNIT(ctx context.Context, nitCI string) (*Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE nit_ci = $1`, nitCI))
}

func (r *repository) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY company_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (company_name, nit_ci, address, contact_person, contact_email, contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		c.CompanyName, c.NitCI, c.Address, c.ContactPerson, c.ContactEmail, c.ContactPhone,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.CompanyName, &c.NitCI, &c.Address, &c.ContactPerson, &c.ContactEmail, &c.ContactPhone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
