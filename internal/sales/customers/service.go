package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	nit := strings.TrimSpace(req.NitCI)
	existing, err := s.repo.GetByNIT(ctx, nit)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing customer: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	customer := Customer{
		CompanyName:   strings.TrimSpace(req.CompanyName),
		NitCI:         nit,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		id, err = repo.Create(ctx, customer)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	customer.ID = id
	return &customer, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// FindByNIT looks a customer up by tax identifier. Used by the client portal login.
func (s *Service) FindByNIT(ctx context.Context, nitCI string) (*Customer, error) {
	nitCI = strings.TrimSpace(nitCI)
	if nitCI == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetByNIT(ctx, nitCI)
}

func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.List(ctx)
}
