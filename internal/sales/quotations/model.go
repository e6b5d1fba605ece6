package quotations

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
)

// Status is the approval state of a quote.
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
)

// Decision is a manager action on a quote.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// DefaultRejectionReason is stored when a manager rejects without a reason.
const DefaultRejectionReason = "Sin motivo específico."

var (
	ErrInvalidStatus   = errors.New("invalid quote status")
	ErrInvalidDecision = fmt.Errorf("invalid quote decision: %w", httpx.ErrValidation)
)

// ParseStatus accepts the stored code or the display label.
func ParseStatus(raw string) (Status, error) {
	s := strings.TrimSpace(raw)
	for _, candidate := range []Status{StatusPendingApproval, StatusApproved, StatusRejected} {
		if s == string(candidate) || s == candidate.Label() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Label is the Spanish text shown to staff and clients.
func (s Status) Label() string {
	switch s {
	case StatusPendingApproval:
		return "Pendiente de Aprobacion"
	case StatusApproved:
		return "Aprobada"
	case StatusRejected:
		return "Rechazada"
	}
	return string(s)
}

// InitialStatus classifies a new quote: totals above the threshold wait for a manager.
func InitialStatus(total, threshold decimal.Decimal) Status {
	if total.GreaterThan(threshold) {
		return StatusPendingApproval
	}
	return StatusApproved
}

// Apply returns the status reached by applying d. Both decisions are allowed
// from every state; nothing leads back to pending approval.
func (s Status) Apply(d Decision) (Status, error) {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusRejected:
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	switch d {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionReject:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, string(d))
}

// FormatNumber renders the human quote number, e.g. COT-2025-0001.
func FormatNumber(year string, seq int64) string {
	return fmt.Sprintf("COT-%s-%04d", year, seq)
}

// Quote is the quote header. Total is fixed at creation.
type Quote struct {
	ID              int64           `json:"id"`
	Number          string          `json:"quote_number"`
	CustomerID      int64           `json:"customer_id"`
	UserID          int64           `json:"user_id"`
	Total           decimal.Decimal `json:"total_amount"`
	Status          Status          `json:"status"`
	StatusLabel     string          `json:"status_label"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []Item          `json:"items,omitempty"`
}

// Item is an immutable quote line. Price and description are copies.
type Item struct {
	ID          int64           `json:"id"`
	QuoteID     int64           `json:"quote_id"`
	TypeID      int64           `json:"type_id"`
	TypeName    string          `json:"type_name,omitempty"`
	Code        *string         `json:"code,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Summary is a quote row in staff listings.
type Summary struct {
	ID              int64           `json:"id"`
	Number          string          `json:"quote_number"`
	CreatedAt       time.Time       `json:"created_at"`
	Total           decimal.Decimal `json:"total_amount"`
	Status          Status          `json:"status"`
	StatusLabel     string          `json:"status_label"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	CustomerName    string          `json:"company_name"`
	VendorID        int64           `json:"user_id"`
	VendorName      string          `json:"vendedor_name"`
}

// ClientQuote is the restricted view shown on the client portal.
type ClientQuote struct {
	ID          int64           `json:"id"`
	Number      string          `json:"quote_number"`
	CreatedAt   time.Time       `json:"created_at"`
	Total       decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	StatusLabel string          `json:"status_label"`
}

// Detail is a quote with its customer and items, used for display and PDF export.
type Detail struct {
	Quote
	CustomerName  string  `json:"company_name"`
	CustomerNIT   string  `json:"nit_ci"`
	ContactPerson *string `json:"contact_person,omitempty"`
	ContactEmail  *string `json:"contact_email,omitempty"`
	VendorName    string  `json:"vendedor_name"`
}
