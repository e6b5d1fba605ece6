package orders

type CreateOrderRequest struct {
	QuoteID int64 `json:"quote_id" validate:"required,gt=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CreateOrderResponse struct {
	ID int64 `json:"id"`
}
