package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/rbac"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, excludeID int64) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	CreateUser(ctx context.Context, u User, passwordHash string) (int64, error)
	UpdateUser(ctx context.Context, u User, passwordHash *string) error
	ActiveEmailsByRole(ctx context.Context, role rbac.Role) ([]string, error)
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
	cost int
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// ListUsers returns all users but the caller.
func (s *Service) ListUsers(ctx context.Context, currentUserID int64) ([]User, error) {
	return s.repo.ListUsers(ctx, currentUserID)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// ManagerEmails returns the addresses of active sales managers.
func (s *Service) ManagerEmails(ctx context.Context) ([]string, error) {
	return s.repo.ActiveEmailsByRole(ctx, rbac.RoleSalesManager)
}

// CreateUser validates the role, hashes the password and stores the account.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		Fullname: strings.TrimSpace(req.Fullname),
		Email:    email,
		Role:     role,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	id, err := s.repo.CreateUser(ctx, user, hash)
	if err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, id)
}

// UpdateUser overwrites the profile and changes the password only when one is given.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, id); err != nil {
		return nil, err
	}

	var hash *string
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		h, err := s.hash(*req.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}
	user := User{ID: id, Fullname: strings.TrimSpace(req.Fullname), Email: email, Role: role, IsActive: req.IsActive}
	if err := s.repo.UpdateUser(ctx, user, hash); err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, id)
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	taken, err := s.repo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrEmailInUse
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password required", httpx.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
