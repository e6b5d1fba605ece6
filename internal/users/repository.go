package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genuino/cotizaciones/internal/platform/db"
	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
)

var (
	ErrNotFound   = fmt.Errorf("user %w", httpx.ErrNotFound)
	ErrEmailInUse = fmt.Errorf("email already registered: %w", httpx.ErrDuplicate)
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, fullname, email, role, is_active, created_at, updated_at`

// ListUsers returns every user except excludeID, ordered by name.
func (r *Repository) ListUsers(ctx context.Context, excludeID int64) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY fullname`, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one user.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

// ActiveEmailsByRole lists the addresses of active users holding role.
func (r *Repository) ActiveEmailsByRole(ctx context.Context, role rbac.Role) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT email FROM users WHERE role = $1 AND is_active ORDER BY email`, string(role))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// EmailTaken reports whether another user than excludeID owns email.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)`, email, excludeID).Scan(&taken)
	return taken, err
}

// CreateUser inserts a user with an already hashed password.
func (r *Repository) CreateUser(ctx context.Context, u User, passwordHash string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (fullname, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, u.Fullname, u.Email, passwordHash, string(u.Role), u.IsActive).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrEmailInUse
		}
		return 0, err
	}
	return id, nil
}

// UpdateUser overwrites profile fields. A nil passwordHash keeps the stored hash.
func (r *Repository) UpdateUser(ctx context.Context, u User, passwordHash *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET fullname = $2, email = $3, role = $4, is_active = $5,
		    password_hash = COALESCE($6, password_hash), updated_at = NOW()
		WHERE id = $1`, u.ID, u.Fullname, u.Email, string(u.Role), u.IsActive, passwordHash)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Fullname, &u.Email, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = rbac.Role(role)
	u.RoleLabel = u.Role.Label()
	return &u, nil
}
