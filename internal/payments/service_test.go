package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palengke-app/palengke/internal/platform/httpx"
)

type mockRepository struct {
	payments map[int64]*Payment
	payouts  []Payout
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{payments: make(map[int64]*Payment), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, p Payment) (int64, error) {
	id := m.nextID
	m.nextID++
	p.ID = id
	m.payments[id] = &p
	return id, nil
}

func (m *mockRepository) SetStatus(ctx context.Context, id int64, status PaymentStatus, gatewayID string) error {
	p, ok := m.payments[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.Status = status
	if gatewayID != "" {
		p.GatewayID = gatewayID
	}
	return nil
}

func (m *mockRepository) CreatePayout(ctx context.Context, p Payout) (int64, error) {
	id := m.nextID
	m.nextID++
	p.ID = id
	m.payouts = append(m.payouts, p)
	return id, nil
}

func (m *mockRepository) ListPayouts(ctx context.Context) ([]Payout, error) {
	return m.payouts, nil
}

// fakeGateway records requests and answers like the payments API.
func fakeGateway(t *testing.T, calls *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Idempotency-Key") == "" {
			t.Error("missing idempotency key")
		}
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		body["_path"] = r.URL.Path
		*calls = append(*calls, body)

		id := fmt.Sprintf("gw_%d", len(*calls))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "status": "succeeded"})
	}))
}

func TestRefundLifecycle(t *testing.T) {
	repo := newMockRepository()
	var calls []map[string]any
	srv := fakeGateway(t, &calls)
	defer srv.Close()

	svc := NewService(repo, NewGateway(srv.URL, "sk_test"), nil)

	p, err := svc.Record(context.Background(), RecordPaymentRequest{
		OrderID: 1, Reference: "PAY-001", Method: "gcash", Amount: 250.50, GatewayID: "src_abc",
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, p.Status)

	refunded, err := svc.Refund(context.Background(), p.ID, "customer request", 1)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, refunded.Status)
	assert.Equal(t, "gw_1", refunded.GatewayID)

	require.Len(t, calls, 1)
	assert.Equal(t, "/refunds", calls[0]["_path"])
	// 250.50 pesos crosses the wire as 25050 centavos
	assert.Equal(t, float64(25050), calls[0]["amount"])

	// a refunded payment cannot be refunded again
	_, err = svc.Refund(context.Background(), p.ID, "again", 1)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestRefundManySkipsUnrefundable(t *testing.T) {
	repo := newMockRepository()
	var calls []map[string]any
	srv := fakeGateway(t, &calls)
	defer srv.Close()

	svc := NewService(repo, NewGateway(srv.URL, "sk_test"), nil)

	first, err := svc.Record(context.Background(), RecordPaymentRequest{
		OrderID: 1, Reference: "PAY-001", Method: "gcash", Amount: 100,
	}, 1)
	require.NoError(t, err)
	second, err := svc.Record(context.Background(), RecordPaymentRequest{
		OrderID: 2, Reference: "PAY-002", Method: "card", Amount: 200,
	}, 1)
	require.NoError(t, err)

	_, err = svc.Refund(context.Background(), second.ID, "early", 1)
	require.NoError(t, err)

	refunded, skipped, err := svc.RefundMany(context.Background(), []int64{first.ID, second.ID}, "bulk refund", 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID}, refunded)
	assert.Equal(t, []int64{second.ID}, skipped)
}

func TestPayoutRecordsGatewayResult(t *testing.T) {
	repo := newMockRepository()
	var calls []map[string]any
	srv := fakeGateway(t, &calls)
	defer srv.Close()

	svc := NewService(repo, NewGateway(srv.URL, "sk_test"), nil)

	payout, err := svc.Payout(context.Background(), PayoutRequest{
		VendorID: 9, GCashNumber: "+639171234567", Amount: 1500,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", payout.Status)
	assert.Equal(t, "gw_1", payout.GatewayID)

	require.Len(t, calls, 1)
	assert.Equal(t, "/payouts", calls[0]["_path"])
}

func TestFormatPHP(t *testing.T) {
	got := FormatPHP(1250)
	assert.Contains(t, got, "₱")
	assert.Contains(t, got, ".00")
}
