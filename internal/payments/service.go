package payments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/palengke-app/palengke/internal/audit"
	"github.com/palengke-app/palengke/internal/platform/httpx"
)

// Service owns the payment ledger and talks to the gateway for money movement.
type Service struct {
	repo     Repository
	gateway  *Gateway
	recorder *audit.Recorder
}

// NewService returns a payment service.
func NewService(repo Repository, gateway *Gateway, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, gateway: gateway, recorder: recorder}
}

// List returns the payment ledger, newest first.
func (s *Service) List(ctx context.Context) ([]Payment, error) {
	return s.repo.List(ctx)
}

// Get returns one payment.
func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.Get(ctx, id)
}

// Record registers a collected payment as PAID.
func (s *Service) Record(ctx context.Context, req RecordPaymentRequest, actorID int64) (*Payment, error) {
	now := time.Now().UTC()
	id, err := s.repo.Create(ctx, Payment{
		OrderID:   req.OrderID,
		Reference: req.Reference,
		Method:    req.Method,
		Status:    StatusPaid,
		Amount:    req.Amount,
		Currency:  "PHP",
		GatewayID: req.GatewayID,
		PaidAt:    &now,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "payment.record", id)
	return s.repo.Get(ctx, id)
}

// Refund returns a paid payment to the customer through the gateway and marks
// it REFUNDED. Only PAID payments can be refunded.
func (s *Service) Refund(ctx context.Context, id int64, reason string, actorID int64) (*Payment, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPaid {
		return nil, fmt.Errorf("%w: payment %d is %s, only PAID payments can be refunded", httpx.ErrConflict, id, p.Status)
	}

	refund, err := s.gateway.CreateRefund(ctx, p.GatewayID, p.Amount, reason)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, id, StatusRefunded, refund.ID); err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "payment.refund", id)
	return s.repo.Get(ctx, id)
}

// RefundMany refunds every refundable payment in ids, skipping the rest.
func (s *Service) RefundMany(ctx context.Context, ids []int64, reason string, actorID int64) (refunded, skipped []int64, err error) {
	for _, id := range ids {
		if _, err := s.Refund(ctx, id, reason, actorID); err != nil {
			skipped = append(skipped, id)
			continue
		}
		refunded = append(refunded, id)
	}
	return refunded, skipped, nil
}

// Payout disburses funds to a vendor's GCash wallet and records it.
func (s *Service) Payout(ctx context.Context, req PayoutRequest, actorID int64) (*Payout, error) {
	result, err := s.gateway.CreatePayout(ctx, req.GCashNumber, req.Amount)
	if err != nil {
		return nil, err
	}

	payout := Payout{
		VendorID:    req.VendorID,
		GCashNumber: req.GCashNumber,
		Amount:      req.Amount,
		Status:      result.Status,
		GatewayID:   result.ID,
	}
	id, err := s.repo.CreatePayout(ctx, payout)
	if err != nil {
		return nil, err
	}
	payout.ID = id
	s.record(ctx, actorID, "payment.payout", id)
	return &payout, nil
}

// ListPayouts returns past disbursements, newest first.
func (s *Service) ListPayouts(ctx context.Context) ([]Payout, error) {
	return s.repo.ListPayouts(ctx)
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		ActorID:  actorID,
		Action:   action,
		Entity:   "payment",
		EntityID: strconv.FormatInt(id, 10),
	})
}

var pesoPrinter = message.NewPrinter(language.Filipino)

// FormatPHP renders a peso amount for exports, e.g. "₱1,250.00".
func FormatPHP(amount float64) string {
	return pesoPrinter.Sprintf("%v", currency.NarrowSymbol(currency.MustParseISO("PHP").Amount(amount)))
}
