package catalog

import "github.com/shopspring/decimal"

// Type groups catalog items and quote lines.
type Type struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Item is a reusable price list entry. Quotes copy its price and
// description, so edits never touch existing quotes.
type Item struct {
	ID          int64           `json:"id"`
	TypeID      int64           `json:"type_id"`
	TypeName    string          `json:"type_name,omitempty"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}
