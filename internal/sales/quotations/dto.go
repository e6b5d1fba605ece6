package quotations

import "github.com/shopspring/decimal"

type CreateQuoteRequest struct {
	CustomerID int64               `json:"customer_id" validate:"required,gt=0"`
	Items      []CreateItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateItemRequest is a quote line as typed by the vendor. UnitPrice is
// validated separately because validator has no decimal support.
type CreateItemRequest struct {
	TypeID      int64           `json:"type_id" validate:"required,gt=0"`
	Code        *string         `json:"code,omitempty" validate:"omitempty,max=64"`
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type RejectRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type CreateQuoteResponse struct {
	ID     int64           `json:"id"`
	Number string          `json:"quote_number"`
	Status Status          `json:"status"`
	Label  string          `json:"status_label"`
	Total  decimal.Decimal `json:"total_amount"`
}
