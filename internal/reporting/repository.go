package reporting

import (
	"context"

	"github.com/genuino/cotizaciones/internal/platform/db"
)

// Repository exposes the aggregate queries behind the reports.
type Repository interface {
	MonthlySales(ctx context.Context) ([]MonthTotal, error)
	VendorMonthlySales(ctx context.Context) ([]VendorMonthTotal, error)
	QuoteCountsByVendor(ctx context.Context, status string) ([]VendorCount, error)
}

const (
	statusApproved = "APPROVED"
	statusRejected = "REJECTED"
)

// PGRepository runs the report queries on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs PGRepository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

func (r *PGRepository) MonthlySales(ctx context.Context) ([]MonthTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM') AS month, SUM(total_amount)
		FROM quotes
		WHERE status = $1
		GROUP BY month
		ORDER BY month ASC`, statusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MonthTotal{}
	for rows.Next() {
		var m MonthTotal
		if err := rows.Scan(&m.Month, &m.Total); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PGRepository) VendorMonthlySales(ctx context.Context) ([]VendorMonthTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(q.created_at, 'YYYY-MM') AS month, u.fullname AS vendor, SUM(q.total_amount)
		FROM quotes q
		JOIN users u ON u.id = q.user_id
		WHERE q.status = $1
		GROUP BY month, vendor
		ORDER BY month, vendor`, statusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []VendorMonthTotal{}
	for rows.Next() {
		var v VendorMonthTotal
		if err := rows.Scan(&v.Month, &v.Vendor, &v.Total); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// QuoteCountsByVendor counts quotes per vendor, restricted to status when not empty.
func (r *PGRepository) QuoteCountsByVendor(ctx context.Context, status string) ([]VendorCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.fullname AS vendor, COUNT(q.id) AS quote_count
		FROM quotes q
		JOIN users u ON u.id = q.user_id
		WHERE $1 = '' OR q.status = $1
		GROUP BY u.fullname
		ORDER BY quote_count DESC, vendor ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []VendorCount{}
	for rows.Next() {
		var v VendorCount
		if err := rows.Scan(&v.Vendor, &v.Count); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
