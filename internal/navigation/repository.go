package navigation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palengke-app/palengke/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for navigation items.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, item Item) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, label, icon, path, section, position, is_active, created_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Label, &it.Icon, &it.Path, &it.Section, &it.Position, &it.IsActive, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM navigation_items ORDER BY section, position, id`)
	if err != nil {
		return nil, fmt.Errorf("list navigation items: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Item, error) {
	return scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM navigation_items WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO navigation_items (label, icon, path, section, position, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		item.Label, item.Icon, item.Path, item.Section, item.Position, item.IsActive,
	).Scan(&id)
	if err != nil {
		if httpx.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: path %s", httpx.ErrDuplicate, item.Path)
		}
		return 0, fmt.Errorf("create navigation item: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := `UPDATE navigation_items SET id = id`
	args := []any{}
	i := 0
	for col, val := range updates {
		i++
		query += fmt.Sprintf(", %s = $%d", col, i)
		args = append(args, val)
	}
	i++
	query += fmt.Sprintf(" WHERE id = $%d", i)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update navigation item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM navigation_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete navigation item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
