package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gateway talks to the PayMongo-style payments API. Requests authenticate
// with the secret key over basic auth and carry an idempotency key so a
// retried refund or payout is not executed twice.
type Gateway struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

// NewGateway returns a gateway client with a bounded default timeout.
func NewGateway(baseURL, secretKey string) *Gateway {
	return &Gateway{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// GatewayRefund is the gateway's view of a completed refund.
type GatewayRefund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// GatewayPayout is the gateway's view of a disbursement.
type GatewayPayout struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// centavos converts a peso amount to the gateway's integer minor unit.
func centavos(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateRefund returns a payment to the customer.
func (g *Gateway) CreateRefund(ctx context.Context, gatewayPaymentID string, amount float64, reason string) (*GatewayRefund, error) {
	payload := map[string]any{
		"payment_id": gatewayPaymentID,
		"amount":     centavos(amount),
		"currency":   "PHP",
		"reason":     reason,
	}
	var out GatewayRefund
	if err := g.post(ctx, "/refunds", payload, &out); err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}
	return &out, nil
}

// CreatePayout disburses funds to a GCash wallet.
func (g *Gateway) CreatePayout(ctx context.Context, gcashNumber string, amount float64) (*GatewayPayout, error) {
	payload := map[string]any{
		"destination": map[string]any{
			"type":   "gcash",
			"number": gcashNumber,
		},
		"amount":   centavos(amount),
		"currency": "PHP",
	}
	var out GatewayPayout
	if err := g.post(ctx, "/payouts", payload, &out); err != nil {
		return nil, fmt.Errorf("create payout: %w", err)
	}
	return &out, nil
}

func (g *Gateway) post(ctx context.Context, path string, payload, out any) error {
	endpoint := strings.TrimRight(g.BaseURL, "/")
	if endpoint == "" {
		return fmt.Errorf("gateway base url required")
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())
	req.SetBasicAuth(g.SecretKey, "")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("gateway response %d: %s", resp.StatusCode, string(data))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
