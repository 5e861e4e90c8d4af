package payments

// RecordPaymentRequest registers a collected payment against an order.
type RecordPaymentRequest struct {
	OrderID   int64   `json:"order_id" validate:"required"`
	Reference string  `json:"reference" validate:"required,max=64"`
	Method    string  `json:"method" validate:"required,oneof=gcash cod card"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	GatewayID string  `json:"gateway_id" validate:"omitempty,max=64"`
}

// RefundRequest asks the gateway to return a payment to the customer.
type RefundRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

// PayoutRequest pushes funds to a vendor's GCash wallet.
type PayoutRequest struct {
	VendorID    int64   `json:"vendor_id" validate:"required"`
	GCashNumber string  `json:"gcash_number" validate:"required,e164"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
}
