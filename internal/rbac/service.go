package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/genuino/cotizaciones/internal/platform/db"
	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/shared"
)

// ErrNotFound indicates that the requested account does not exist.
var ErrNotFound = fmt.Errorf("rbac: account %w", httpx.ErrNotFound)

// ErrInactive indicates a deactivated account.
var ErrInactive = fmt.Errorf("rbac: account inactive: %w", httpx.ErrForbidden)

// Repository resolves the stored role of a user.
type Repository interface {
	GrantFor(ctx context.Context, userID int64) (Grant, error)
}

type pgRepository struct {
	db db.DBTX
}

// NewRepository returns a Repository reading the users table.
func NewRepository(conn db.DBTX) Repository {
	return &pgRepository{db: conn}
}

func (r *pgRepository) GrantFor(ctx context.Context, userID int64) (Grant, error) {
	var (
		g    Grant
		role string
	)
	err := r.db.QueryRow(ctx, `SELECT id, role, is_active FROM users WHERE id = $1`, userID).Scan(&g.UserID, &role, &g.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Grant{}, ErrNotFound
		}
		return Grant{}, err
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return Grant{}, err
	}
	g.Role = parsed
	return g, nil
}

// Service orchestrates RBAC lookups.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the principal of an active user.
func (s *Service) Resolve(ctx context.Context, userID int64) (shared.Principal, error) {
	grant, err := s.repo.GrantFor(ctx, userID)
	if err != nil {
		return shared.Principal{}, err
	}
	if !grant.IsActive {
		return shared.Principal{}, ErrInactive
	}
	return shared.Principal{
		UserID:      grant.UserID,
		Role:        string(grant.Role),
		Permissions: grant.Role.Permissions(),
	}, nil
}

// EffectivePermissions returns the permission names for a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	p, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Permissions, nil
}
