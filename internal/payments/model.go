package payments

import "time"

// PaymentStatus tracks the lifecycle of a collected payment.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusPaid     PaymentStatus = "PAID"
	StatusRefunded PaymentStatus = "REFUNDED"
	StatusFailed   PaymentStatus = "FAILED"
)

// Payment is money collected against an order. Amounts are in pesos; the
// gateway wire format uses centavos, converted at the client boundary.
type Payment struct {
	ID        int64         `json:"id"`
	OrderID   int64         `json:"order_id"`
	Reference string        `json:"reference"`
	Method    string        `json:"method"`
	Status    PaymentStatus `json:"status"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	GatewayID string        `json:"gateway_id,omitempty"`
	PaidAt    *time.Time    `json:"paid_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Payout is money pushed out to a vendor's GCash wallet.
type Payout struct {
	ID          int64     `json:"id"`
	VendorID    int64     `json:"vendor_id"`
	GCashNumber string    `json:"gcash_number"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	GatewayID   string    `json:"gateway_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
