package orders

import "time"

// CreateOrderLineReq is one line of a new order.
type CreateOrderLineReq struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// CreateOrderRequest is the payload for registering an order placed through
// the storefront.
type CreateOrderRequest struct {
	CustomerID      int64                `json:"customer_id" validate:"required,gt=0"`
	CustomerName    string               `json:"customer_name" validate:"required"`
	PaymentMethod   string               `json:"payment_method" validate:"required,oneof=gcash cod card"`
	ShippingFee     float64              `json:"shipping_fee" validate:"gte=0"`
	ShippingAddress string               `json:"shipping_address" validate:"required"`
	Notes           *string              `json:"notes"`
	Lines           []CreateOrderLineReq `json:"lines" validate:"required,min=1,dive"`
}

// ListOrdersRequest narrows the raw collection fetched from the database
// before the table engine takes over in-memory.
type ListOrdersRequest struct {
	Status   *OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}
