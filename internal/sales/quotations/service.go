package quotations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/genuino/cotizaciones/internal/events"
	"github.com/genuino/cotizaciones/internal/platform/httpx"
	salesshared "github.com/genuino/cotizaciones/internal/sales/shared"
	"github.com/genuino/cotizaciones/internal/shared"
)

// DefaultNumberYear is the year literal printed in quote numbers.
const DefaultNumberYear = "2025"

var (
	ErrNoItems          = fmt.Errorf("quote needs at least one item: %w", httpx.ErrValidation)
	ErrApproverRequired = fmt.Errorf("only the sales manager can approve or reject quotes: %w", httpx.ErrForbidden)
	ErrDocumentDenied   = fmt.Errorf("quote is not available for this client: %w", httpx.ErrForbidden)
)

// DecisionNotifier tells the quote creator about a manager decision. Failures
// are logged and never undo the decision.
type DecisionNotifier interface {
	NotifyQuoteDecision(ctx context.Context, quoteID int64, status Status) error
}

// Metrics records business counters.
type Metrics interface {
	QuoteCreated(status string)
	QuoteDecided(decision string)
}

// Options carries optional collaborators.
type Options struct {
	NumberYear string
	Events     events.Publisher
	Notifier   DecisionNotifier
	Metrics    Metrics
}

type Service struct {
	repo     Repository
	logger   *slog.Logger
	year     string
	events   events.Publisher
	notifier DecisionNotifier
	metrics  Metrics
}

func NewService(repo Repository, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	year := strings.TrimSpace(opts.NumberYear)
	if year == "" {
		year = DefaultNumberYear
	}
	pub := opts.Events
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{
		repo:     repo,
		logger:   logger,
		year:     year,
		events:   pub,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
	}
}

// Create prices the items, classifies the quote against the current threshold
// and stores header, items and number in one transaction.
func (s *Service) Create(ctx context.Context, req CreateQuoteRequest, creatorID int64) (*Quote, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	if req.CustomerID <= 0 {
		return nil, ErrUnknownCustomer
	}

	items := make([]Item, 0, len(req.Items))
	subtotals := make([]decimal.Decimal, 0, len(req.Items))
	for i, in := range req.Items {
		if err := salesshared.ValidateQuantity(in.Quantity); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if strings.TrimSpace(in.Description) == "" {
			return nil, fmt.Errorf("%w: item %d description required", httpx.ErrValidation, i+1)
		}
		if err := salesshared.ValidateUnitPrice(in.UnitPrice); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		subtotal := salesshared.LineSubtotal(in.Quantity, in.UnitPrice)
		if err := salesshared.ValidateAmount("subtotal", subtotal); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		subtotals = append(subtotals, subtotal)
		items = append(items, Item{
			TypeID:      in.TypeID,
			Code:        trimmed(in.Code),
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Subtotal:    subtotal,
		})
	}
	total := salesshared.Sum(subtotals...)
	if err := salesshared.ValidateAmount("total", total); err != nil {
		return nil, err
	}

	var quoteID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		exists, err := repo.CustomerExists(ctx, req.CustomerID)
		if err != nil {
			return fmt.Errorf("check customer: %w", err)
		}
		if !exists {
			return ErrUnknownCustomer
		}

		threshold, err := repo.ApprovalThreshold(ctx)
		if err != nil {
			return fmt.Errorf("read approval threshold: %w", err)
		}
		status := InitialStatus(total, threshold)

		number, err := repo.NextNumber(ctx, s.year)
		if err != nil {
			return err
		}

		quoteID, err = repo.Create(ctx, Quote{
			Number:     number,
			CustomerID: req.CustomerID,
			UserID:     creatorID,
			Total:      total,
			Status:     status,
		})
		if err != nil {
			return fmt.Errorf("create quote: %w", err)
		}

		for i := range items {
			items[i].QuoteID = quoteID
			id, err := repo.InsertItem(ctx, items[i])
			if err != nil {
				return fmt.Errorf("insert quote item: %w", err)
			}
			items[i].ID = id
		}

		if status == StatusPendingApproval {
			if err := repo.RecordApproval(ctx, shared.ApprovalLog{
				QuoteID: quoteID,
				ActorID: creatorID,
				Action:  shared.ApprovalSubmit,
				Note:    fmt.Sprintf("total %s exceeds threshold %s", total.StringFixed(salesshared.MoneyScale), threshold.StringFixed(salesshared.MoneyScale)),
			}); err != nil {
				return fmt.Errorf("record approval submit: %w", err)
			}
		}

		return repo.Audit(ctx, shared.AuditLog{
			ActorID:  creatorID,
			Action:   "quote.create",
			Entity:   "quote",
			EntityID: quoteID,
			Meta: map[string]any{
				"quote_number": number,
				"total":        total.StringFixed(salesshared.MoneyScale),
				"status":       string(status),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	quote, err := s.repo.Get(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("reload quote: %w", err)
	}
	quote.Items = items

	events.Emit(ctx, s.events, s.logger, events.New(events.QuoteCreated, quote.ID, quotePayload(quote)))
	if s.metrics != nil {
		s.metrics.QuoteCreated(string(quote.Status))
	}
	return quote, nil
}

// Approve moves the quote to Approved from any state. The rejection reason is kept.
func (s *Service) Approve(ctx context.Context, id int64, actor shared.Principal) (*Quote, error) {
	return s.decide(ctx, id, DecisionApprove, nil, actor)
}

// Reject moves the quote to Rejected from any state and overwrites the reason.
func (s *Service) Reject(ctx context.Context, id int64, reason *string, actor shared.Principal) (*Quote, error) {
	text := DefaultRejectionReason
	if r := trimmed(reason); r != nil {
		text = *r
	}
	return s.decide(ctx, id, DecisionReject, &text, actor)
}

func (s *Service) decide(ctx context.Context, id int64, decision Decision, reason *string, actor shared.Principal) (*Quote, error) {
	if !actor.Has(shared.PermQuoteApprove) {
		return nil, ErrApproverRequired
	}

	var updated *Quote
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		next, err := current.Status.Apply(decision)
		if err != nil {
			return err
		}
		if err := repo.SetStatus(ctx, id, next, reason); err != nil {
			return fmt.Errorf("update quote status: %w", err)
		}

		action := shared.ApprovalApprove
		note := ""
		if decision == DecisionReject {
			action = shared.ApprovalReject
			note = *reason
		}
		if err := repo.RecordApproval(ctx, shared.ApprovalLog{
			QuoteID: id,
			ActorID: actor.UserID,
			Action:  action,
			Note:    note,
		}); err != nil {
			return fmt.Errorf("record approval: %w", err)
		}
		if err := repo.Audit(ctx, shared.AuditLog{
			ActorID:  actor.UserID,
			Action:   "quote." + string(decision),
			Entity:   "quote",
			EntityID: id,
			Meta: map[string]any{
				"from": string(current.Status),
				"to":   string(next),
			},
		}); err != nil {
			return err
		}

		updated = current
		updated.Status = next
		updated.StatusLabel = next.Label()
		if reason != nil {
			updated.RejectionReason = reason
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.QuoteApproved
	if decision == DecisionReject {
		eventType = events.QuoteRejected
	}
	events.Emit(ctx, s.events, s.logger, events.New(eventType, id, quotePayload(updated)))
	if s.notifier != nil {
		if err := s.notifier.NotifyQuoteDecision(ctx, id, updated.Status); err != nil {
			s.logger.Warn("enqueue quote decision notification", "quote_id", id, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.QuoteDecided(string(decision))
	}
	return updated, nil
}

// Get returns the quote detail with items.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	return s.repo.Detail(ctx, id)
}

// History lists the approval log of a quote.
func (s *Service) History(ctx context.Context, id int64) ([]shared.ApprovalLog, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

// MyQuotes lists quotes created by userID. Storage errors yield an empty list.
func (s *Service) MyQuotes(ctx context.Context, userID int64) []Summary {
	quotes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list my quotes", "user_id", userID, "error", err)
		return []Summary{}
	}
	return quotes
}

func (s *Service) All(ctx context.Context) ([]Summary, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Pending(ctx context.Context) ([]Summary, error) {
	return s.repo.ListByStatus(ctx, StatusPendingApproval)
}

// ApprovedWithoutOrder lists approved quotes that have no order yet.
func (s *Service) ApprovedWithoutOrder(ctx context.Context) ([]Summary, error) {
	return s.repo.ListApprovedWithoutOrder(ctx)
}

// PendingCount feeds the pending approval digest.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

// ClientQuotes lists the approved quotes of a customer. Storage errors yield an empty list.
func (s *Service) ClientQuotes(ctx context.Context, customerID int64) []ClientQuote {
	quotes, err := s.repo.ListApprovedForCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("list client quotes", "customer_id", customerID, "error", err)
		return []ClientQuote{}
	}
	return quotes
}

// ClientDocument returns the quote for PDF export on the client portal. It is
// forbidden unless the quote belongs to customerID and is approved.
func (s *Service) ClientDocument(ctx context.Context, customerID, quoteID int64) (*Detail, error) {
	detail, err := s.repo.Detail(ctx, quoteID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrDocumentDenied
		}
		return nil, err
	}
	if detail.CustomerID != customerID || detail.Status != StatusApproved {
		return nil, ErrDocumentDenied
	}
	return detail, nil
}

type eventPayload struct {
	ID              int64   `json:"id"`
	Number          string  `json:"quote_number"`
	CustomerID      int64   `json:"customer_id"`
	UserID          int64   `json:"user_id"`
	Total           string  `json:"total_amount"`
	Status          Status  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

func quotePayload(q *Quote) eventPayload {
	return eventPayload{
		ID:              q.ID,
		Number:          q.Number,
		CustomerID:      q.CustomerID,
		UserID:          q.UserID,
		Total:           q.Total.StringFixed(salesshared.MoneyScale),
		Status:          q.Status,
		RejectionReason: q.RejectionReason,
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
