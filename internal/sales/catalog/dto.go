package catalog

import "github.com/shopspring/decimal"

type TypeRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type ItemRequest struct {
	TypeID      int64           `json:"type_id" validate:"required,gt=0"`
	Code        string          `json:"code" validate:"required,max=50"`
	Description string          `json:"description" validate:"required,max=500"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}
