package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palengke-app/palengke/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for payments and payouts.
type Repository interface {
	List(ctx context.Context) ([]Payment, error)
	Get(ctx context.Context, id int64) (*Payment, error)
	Create(ctx context.Context, p Payment) (int64, error)
	SetStatus(ctx context.Context, id int64, status PaymentStatus, gatewayID string) error
	CreatePayout(ctx context.Context, p Payout) (int64, error)
	ListPayouts(ctx context.Context) ([]Payout, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const paymentColumns = `id, order_id, reference, method, status, amount, currency, gateway_id, paid_at, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Reference, &p.Method, &p.Status, &p.Amount, &p.Currency, &p.GatewayID, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments (order_id, reference, method, status, amount, currency, gateway_id, paid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.OrderID, p.Reference, p.Method, p.Status, p.Amount, p.Currency, p.GatewayID, p.PaidAt,
	).Scan(&id)
	if err != nil {
		if httpx.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: reference %s", httpx.ErrDuplicate, p.Reference)
		}
		return 0, fmt.Errorf("create payment: %w", err)
	}
	return id, nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status PaymentStatus, gatewayID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET status = $1, gateway_id = COALESCE(NULLIF($2, ''), gateway_id) WHERE id = $3`,
		status, gatewayID, id,
	)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) CreatePayout(ctx context.Context, p Payout) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payouts (vendor_id, gcash_number, amount, status, gateway_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.VendorID, p.GCashNumber, p.Amount, p.Status, p.GatewayID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create payout: %w", err)
	}
	return id, nil
}

func (r *repository) ListPayouts(ctx context.Context) ([]Payout, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, vendor_id, gcash_number, amount, status, gateway_id, created_at FROM payouts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var out []Payout
	for rows.Next() {
		var p Payout
		if err := rows.Scan(&p.ID, &p.VendorID, &p.GCashNumber, &p.Amount, &p.Status, &p.GatewayID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
