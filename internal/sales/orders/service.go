package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/genuino/cotizaciones/internal/events"
	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/sales/quotations"
	"github.com/genuino/cotizaciones/internal/shared"
)

var (
	ErrQuoteNotFound    = fmt.Errorf("quote %w", httpx.ErrNotFound)
	ErrQuoteNotApproved = fmt.Errorf("only approved quotes can become orders: %w", httpx.ErrConflict)
)

// Metrics records order counters.
type Metrics interface {
	OrderCreated()
	OrderStatusChanged(status string)
}

type Service struct {
	repo    Repository
	logger  *slog.Logger
	events  events.Publisher
	metrics Metrics
}

func NewService(repo Repository, logger *slog.Logger, publisher events.Publisher, metrics Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{repo: repo, logger: logger, events: publisher, metrics: metrics}
}

// Create opens the order of an approved quote. The quote row is share-locked
// for the transaction, so a concurrent reject waits for the order to commit
// or sees it fail. The unique constraint on orders.quote_id keeps a second
// attempt from producing another row.
func (s *Service) Create(ctx context.Context, quoteID, actorID int64) (*Order, error) {
	var orderID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		quote, err := repo.LockQuote(ctx, quoteID)
		if err != nil {
			return err
		}
		if quote.Status != quotations.StatusApproved {
			return ErrQuoteNotApproved
		}
		id, err := repo.Create(ctx, quoteID, StatusConfirmed)
		if err != nil {
			return err
		}
		orderID = id
		return repo.Audit(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "order.create",
			Entity:   "order",
			EntityID: id,
			Meta:     map[string]any{"quote_id": quoteID, "quote_number": quote.Number},
		})
	})
	if err != nil {
		if httpx.IsClientError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, s.logger, events.New(events.OrderCreated, order.ID, order))
	if s.metrics != nil {
		s.metrics.OrderCreated()
	}
	return order, nil
}

// AdvanceStatus overwrites the delivery status and refreshes last_update.
func (s *Service) AdvanceStatus(ctx context.Context, id int64, rawStatus string, actorID int64) (*Order, error) {
	next, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := current.Status.Transition(next); err != nil {
			return err
		}
		if err := repo.UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		return repo.Audit(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "order.status",
			Entity:   "order",
			EntityID: id,
			Meta:     map[string]any{"from": string(current.Status), "to": string(next)},
		})
	})
	if err != nil {
		return nil, err
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, s.logger, events.New(events.OrderStatusChanged, order.ID, order))
	if s.metrics != nil {
		s.metrics.OrderStatusChanged(string(order.Status))
	}
	return order, nil
}

// Active lists orders that are not ready for delivery yet.
func (s *Service) Active(ctx context.Context) ([]ActiveOrder, error) {
	return s.repo.ListActive(ctx)
}

// ClientOrders lists the orders of a customer. Storage errors yield an empty list.
func (s *Service) ClientOrders(ctx context.Context, customerID int64) []ClientOrder {
	orders, err := s.repo.ListForCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("list client orders", "customer_id", customerID, "error", err)
		return []ClientOrder{}
	}
	return orders
}
