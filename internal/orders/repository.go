package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palengke-app/palengke/internal/platform/db"
	"github.com/palengke-app/palengke/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for orders.
type Repository interface {
	List(ctx context.Context, req ListOrdersRequest) ([]Order, error)
	Get(ctx context.Context, id int64) (*Order, error)
	GetLines(ctx context.Context, orderID int64) ([]OrderLine, error)
	Create(ctx context.Context, order Order, lines []OrderLine) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus, reason *string) error
	GenerateNumber(ctx context.Context, placedAt time.Time) (string, error)
	RecentShippingAddresses(ctx context.Context, since time.Time) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{
		pool: pool,
		qb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const orderColumns = `id, order_no, customer_id, customer_name, status, payment_method, subtotal, shipping_fee, total, shipping_address, notes, placed_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNo, &o.CustomerID, &o.CustomerName, &o.Status, &o.PaymentMethod,
		&o.Subtotal, &o.ShippingFee, &o.Total, &o.ShippingAddress, &o.Notes, &o.PlacedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]Order, error) {
	q := r.qb.Select(
		"id", "order_no", "customer_id", "customer_name", "status", "payment_method",
		"subtotal", "shipping_fee", "total", "shipping_address", "notes", "placed_at", "updated_at",
	).From("orders").OrderBy("placed_at DESC, id DESC")

	if req.Status != nil {
		q = q.Where(squirrel.Eq{"status": *req.Status})
	}
	if req.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"placed_at": *req.DateFrom})
	}
	if req.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"placed_at": *req.DateTo})
	}
	limit := req.Limit
	if limit <= 0 || limit > 2000 {
		limit = 1000
	}
	q = q.Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	return scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *repository) GetLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, name, quantity, unit_price, line_total FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Name, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) Create(ctx context.Context, order Order, lines []OrderLine) (int64, error) {
	var orderID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO orders (order_no, customer_id, customer_name, status, payment_method, subtotal, shipping_fee, total, shipping_address, notes, placed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
			order.OrderNo, order.CustomerID, order.CustomerName, order.Status, order.PaymentMethod,
			order.Subtotal, order.ShippingFee, order.Total, order.ShippingAddress, order.Notes, order.PlacedAt,
		).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for _, line := range lines {
			_, err := tx.Exec(ctx,
				`INSERT INTO order_lines (order_id, product_id, name, quantity, unit_price, line_total) VALUES ($1, $2, $3, $4, $5, $6)`,
				orderID, line.ProductID, line.Name, line.Quantity, line.UnitPrice, line.LineTotal)
			if err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status OrderStatus, reason *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $1, notes = COALESCE($2, notes), updated_at = NOW() WHERE id = $3`,
		status, reason, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// RecentShippingAddresses lists the distinct shipping addresses of orders
// placed since the given time. The geocode backfill job feeds on this.
func (r *repository) RecentShippingAddresses(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT shipping_address FROM orders WHERE placed_at >= $1 AND shipping_address <> ''`, since)
	if err != nil {
		return nil, fmt.Errorf("recent shipping addresses: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, rows.Err()
}

func (r *repository) GenerateNumber(ctx context.Context, placedAt time.Time) (string, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%05d", placedAt.Format("20060102"), seq), nil
}
