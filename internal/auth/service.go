package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/genuino/cotizaciones/internal/shared"
)

// placeholderHash is compared when the email is unknown so both failure
// paths cost one bcrypt comparison.
var placeholderHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder"), bcrypt.MinCost)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Authenticate validates email/password credentials. Unknown emails,
// inactive accounts and wrong passwords all yield ErrInvalidCredentials;
// storage failures are returned as is.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(placeholderHash, []byte(password))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CurrentUser loads the profile of a logged in user.
func (s *Service) CurrentUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// RegisterSession records the login in user_sessions.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, ttl time.Duration, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, s.now().Add(ttl), ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
