package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	orders map[int64]*Order
	lines  map[int64][]OrderLine
	nextID int64
	seq    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders: make(map[int64]*Order),
		lines:  make(map[int64][]OrderLine),
		nextID: 1,
	}
}

func (m *mockRepository) List(ctx context.Context, req ListOrdersRequest) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d not found", id)
	}
	copied := *o
	return &copied, nil
}

func (m *mockRepository) GetLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	return m.lines[orderID], nil
}

func (m *mockRepository) Create(ctx context.Context, order Order, lines []OrderLine) (int64, error) {
	id := m.nextID
	m.nextID++
	order.ID = id
	m.orders[id] = &order
	m.lines[id] = lines
	return id, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status OrderStatus, reason *string) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("order %d not found", id)
	}
	o.Status = status
	return nil
}

func (m *mockRepository) RecentShippingAddresses(ctx context.Context, since time.Time) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, o := range m.orders {
		if o.PlacedAt.Before(since) || o.ShippingAddress == "" || seen[o.ShippingAddress] {
			continue
		}
		seen[o.ShippingAddress] = true
		out = append(out, o.ShippingAddress)
	}
	return out, nil
}

func (m *mockRepository) GenerateNumber(ctx context.Context, placedAt time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("ORD-%s-%05d", placedAt.Format("20060102"), m.seq), nil
}

func createRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerID:      7,
		CustomerName:    "Maria Santos",
		PaymentMethod:   "gcash",
		ShippingFee:     50,
		ShippingAddress: "123 Rizal St, Quezon City",
		Lines: []CreateOrderLineReq{
			{ProductID: 1, Name: "Dried mangoes", Quantity: 2, UnitPrice: 150},
			{ProductID: 2, Name: "Banana chips", Quantity: 1, UnitPrice: 80},
		},
	}
}

func TestCreateComputesTotals(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	order, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, 380.0, order.Subtotal)
	assert.Equal(t, 430.0, order.Total)
	assert.Contains(t, order.OrderNo, "ORD-")
}

func TestTransitionEnforcesLifecycle(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)

	// pending -> shipped is not allowed
	_, err = svc.Transition(context.Background(), order.ID, StatusShipped, 1, nil)
	require.ErrorIs(t, err, ErrInvalidStatus)

	// pending -> processing -> shipped -> delivered is
	for _, to := range []OrderStatus{StatusProcessing, StatusShipped, StatusDelivered} {
		order, err = svc.Transition(context.Background(), order.ID, to, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, to, order.Status)
	}

	// delivered is final
	_, err = svc.Transition(context.Background(), order.ID, StatusCancelled, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionManySkipsInvalid(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	first, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), createRequest(), 1)
	require.NoError(t, err)

	// Move the second order past the point where processing is allowed.
	_, err = svc.Transition(context.Background(), second.ID, StatusCancelled, 1, nil)
	require.NoError(t, err)

	updated, skipped, err := svc.TransitionMany(context.Background(), []int64{first.ID, second.ID}, StatusProcessing, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID}, updated)
	assert.Equal(t, []int64{second.ID}, skipped)
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusProcessing, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %t, want %t", tc.from, tc.to, got, tc.want)
		}
	}
}
