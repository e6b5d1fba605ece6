package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/genuino/cotizaciones/internal/platform/db"
	salesshared "github.com/genuino/cotizaciones/internal/sales/shared"
)

// Repository reads and writes the approval threshold.
type Repository interface {
	Threshold(ctx context.Context) (decimal.Decimal, error)
	SetThreshold(ctx context.Context, value decimal.Decimal) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a Repository on conn.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) Threshold(ctx context.Context) (decimal.Decimal, error) {
	return ReadThreshold(ctx, r.db)
}

func (r *repository) SetThreshold(ctx context.Context, value decimal.Decimal) error {
	if err := salesshared.ValidateAmount("approval threshold", value); err != nil {
		return err
	}
	return Put(ctx, r.db, KeyApprovalThreshold, value.StringFixed(salesshared.MoneyScale))
}

// Service exposes the approval threshold accessor.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Threshold returns the current approval threshold.
func (s *Service) Threshold(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.Threshold(ctx)
}

// SetThreshold parses raw and stores it. Only later quotes see the new value.
func (s *Service) SetThreshold(ctx context.Context, raw string, actorID int64) (decimal.Decimal, error) {
	value, err := salesshared.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("approval threshold: %w", err)
	}
	if err := salesshared.ValidateAmount("approval threshold", value); err != nil {
		return decimal.Zero, err
	}
	if err := s.repo.SetThreshold(ctx, value); err != nil {
		return decimal.Zero, err
	}
	s.logger.Info("approval threshold updated", slog.String("value", value.StringFixed(salesshared.MoneyScale)), slog.Int64("actor_id", actorID))
	return value, nil
}
