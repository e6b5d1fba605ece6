package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/genuino/cotizaciones/internal/platform/httpx"
	"github.com/genuino/cotizaciones/internal/sales/quotations"
)

// Status is the delivery state of an order.
type Status string

const (
	StatusConfirmed        Status = "CONFIRMED"
	StatusProcessing       Status = "PROCESSING"
	StatusInTransit        Status = "IN_TRANSIT"
	StatusReadyForDelivery Status = "READY_FOR_DELIVERY"
)

var (
	ErrUnknownStatus = fmt.Errorf("unknown order status: %w", httpx.ErrValidation)
	ErrTerminal      = fmt.Errorf("order is ready for delivery and cannot change status: %w", httpx.ErrConflict)
)

// Statuses lists the delivery states in fulfilment order.
func Statuses() []Status {
	return []Status{StatusConfirmed, StatusProcessing, StatusInTransit, StatusReadyForDelivery}
}

// ParseStatus accepts the stored code or the Spanish label.
func ParseStatus(raw string) (Status, error) {
	s := strings.TrimSpace(raw)
	for _, candidate := range Statuses() {
		if strings.EqualFold(s, string(candidate)) || s == candidate.Label() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

func (s Status) Label() string {
	switch s {
	case StatusConfirmed:
		return "Pedido Confirmado"
	case StatusProcessing:
		return "En Preparación"
	case StatusInTransit:
		return "En Tránsito"
	case StatusReadyForDelivery:
		return "Listo para Entrega"
	}
	return string(s)
}

// Terminal reports whether the order has reached its final state.
func (s Status) Terminal() bool {
	return s == StatusReadyForDelivery
}

// Transition validates moving from s to next. Any known status may be set
// until the order is ready for delivery; after that only a refresh of the
// same status is accepted.
func (s Status) Transition(next Status) error {
	switch next {
	case StatusConfirmed, StatusProcessing, StatusInTransit, StatusReadyForDelivery:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(next))
	}
	if s.Terminal() && next != s {
		return ErrTerminal
	}
	return nil
}

// QuoteRef is the part of a quote order creation depends on.
type QuoteRef struct {
	ID     int64
	Number string
	Status quotations.Status
}

type Order struct {
	ID          int64     `json:"id"`
	QuoteID     int64     `json:"quote_id"`
	Status      Status    `json:"order_status"`
	StatusLabel string    `json:"order_status_label"`
	LastUpdate  time.Time `json:"last_update"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActiveOrder is a row of the staff fulfilment board.
type ActiveOrder struct {
	ID          int64     `json:"id"`
	Status      Status    `json:"order_status"`
	StatusLabel string    `json:"order_status_label"`
	QuoteID     int64     `json:"quote_id"`
	QuoteNumber string    `json:"quote_number"`
	CompanyName string    `json:"company_name"`
	VendorName  string    `json:"vendedor_name"`
	LastUpdate  time.Time `json:"last_update"`
}

// ClientOrder is the portal view of an order.
type ClientOrder struct {
	ID             int64     `json:"id"`
	QuoteNumber    string    `json:"quote_number"`
	QuoteCreatedAt time.Time `json:"created_at"`
	Status         Status    `json:"order_status"`
	StatusLabel    string    `json:"order_status_label"`
}
