package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	salesshared "github.com/genuino/cotizaciones/internal/sales/shared"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListTypes(ctx context.Context) ([]Type, error) {
	return s.repo.ListTypes(ctx)
}

func (s *Service) CreateType(ctx context.Context, req TypeRequest) (int64, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return 0, err
	}
	return s.repo.CreateType(ctx, name)
}

func (s *Service) UpdateType(ctx context.Context, id int64, req TypeRequest) error {
	name, err := cleanName(req.Name)
	if err != nil {
		return err
	}
	return s.repo.UpdateType(ctx, id, name)
}

// DeleteType removes a type that no catalog item or quote item references.
func (s *Service) DeleteType(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		inUse, err := repo.TypeInUse(ctx, id)
		if err != nil {
			return fmt.Errorf("check catalog type usage: %w", err)
		}
		if inUse {
			return ErrTypeInUse
		}
		return repo.DeleteType(ctx, id)
	})
}

func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.repo.ListItems(ctx)
}

func (s *Service) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) CreateItem(ctx context.Context, req ItemRequest) (int64, error) {
	item, err := itemFromRequest(req)
	if err != nil {
		return 0, err
	}
	return s.repo.CreateItem(ctx, item)
}

func (s *Service) UpdateItem(ctx context.Context, id int64, req ItemRequest) error {
	item, err := itemFromRequest(req)
	if err != nil {
		return err
	}
	item.ID = id
	return s.repo.UpdateItem(ctx, item)
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.repo.DeleteItem(ctx, id)
}

func cleanName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: name required", httpx.ErrValidation)
	}
	return name, nil
}

func itemFromRequest(req ItemRequest) (Item, error) {
	code := strings.TrimSpace(req.Code)
	desc := strings.TrimSpace(req.Description)
	if req.TypeID <= 0 || code == "" || desc == "" {
		return Item{}, fmt.Errorf("%w: type, code and description are required", httpx.ErrValidation)
	}
	if err := salesshared.ValidateUnitPrice(req.UnitPrice); err != nil {
		return Item{}, err
	}
	return Item{TypeID: req.TypeID, Code: code, Description: desc, UnitPrice: req.UnitPrice}, nil
}
