package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/palengke-app/palengke/internal/audit"
)

// ErrInvalidStatus indicates a disallowed status transition.
var ErrInvalidStatus = errors.New("invalid status transition")

// Service coordinates order operations.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
}

// NewService returns an order service.
func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// Create registers a new pending order with computed totals.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, actorID int64) (*Order, error) {
	placedAt := time.Now()
	orderNo, err := s.repo.GenerateNumber(ctx, placedAt)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	var subtotal float64
	lines := make([]OrderLine, 0, len(req.Lines))
	for _, lineReq := range req.Lines {
		lineTotal := float64(lineReq.Quantity) * lineReq.UnitPrice
		subtotal += lineTotal
		lines = append(lines, OrderLine{
			ProductID: lineReq.ProductID,
			Name:      lineReq.Name,
			Quantity:  lineReq.Quantity,
			UnitPrice: lineReq.UnitPrice,
			LineTotal: lineTotal,
		})
	}

	order := Order{
		OrderNo:         orderNo,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		Status:          StatusPending,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        subtotal,
		ShippingFee:     req.ShippingFee,
		Total:           subtotal + req.ShippingFee,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		PlacedAt:        placedAt,
	}

	id, err := s.repo.Create(ctx, order, lines)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.record(ctx, actorID, "order.create", id)
	return s.repo.Get(ctx, id)
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// GetLines returns the line items of an order.
func (s *Service) GetLines(ctx context.Context, id int64) ([]OrderLine, error) {
	return s.repo.GetLines(ctx, id)
}

// List returns the raw order collection for the table engine.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, error) {
	return s.repo.List(ctx, req)
}

// Transition moves an order to the given status, enforcing the lifecycle.
func (s *Service) Transition(ctx context.Context, id int64, to OrderStatus, actorID int64, reason *string) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !CanTransition(existing.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, existing.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to, reason); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "order.status."+string(to), id)
	return s.repo.Get(ctx, id)
}

// TransitionMany applies the same transition to a batch of orders. Orders
// that cannot make the transition are skipped and reported back rather than
// failing the whole batch.
func (s *Service) TransitionMany(ctx context.Context, ids []int64, to OrderStatus, actorID int64) (updated, skipped []int64, err error) {
	for _, id := range ids {
		if _, terr := s.Transition(ctx, id, to, actorID, nil); terr != nil {
			if errors.Is(terr, ErrInvalidStatus) {
				skipped = append(skipped, id)
				continue
			}
			return updated, skipped, terr
		}
		updated = append(updated, id)
	}
	return updated, skipped, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "order",
		EntityID: strconv.FormatInt(id, 10),
	})
}
