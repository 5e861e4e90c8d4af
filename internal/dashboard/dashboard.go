package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Summary is the headline card data on the admin landing page.
type Summary struct {
	OrdersToday       int64     `json:"orders_today"`
	RevenueToday      float64   `json:"revenue_today"`
	PendingOrders     int64     `json:"pending_orders"`
	ActiveProducts    int64     `json:"active_products"`
	OpenConversations int64     `json:"open_conversations"`
	GeneratedAt       time.Time `json:"generated_at"`
}

const cacheKey = "dashboard:summary"

// Service aggregates the summary. Concurrent requests for a cold cache
// collapse into one database pass via singleflight.
type Service struct {
	logger *slog.Logger
	pool   *pgxpool.Pool
	cache  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewService returns a dashboard service.
func NewService(logger *slog.Logger, pool *pgxpool.Pool, cache *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{logger: logger, pool: pool, cache: cache, ttl: ttl}
}

// Summary returns the current headline numbers, cached for the configured TTL.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var cached Summary
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("dashboard cache read", slog.Any("error", err))
		}
	}

	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		summary, err := s.compute(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if raw, err := json.Marshal(summary); err == nil {
				if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
					s.logger.Warn("dashboard cache write", slog.Any("error", err))
				}
			}
		}
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Summary), nil
}

// Invalidate drops the cached summary, forcing the next read to recompute.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidate", slog.Any("error", err))
	}
}

func (s *Service) compute(ctx context.Context) (*Summary, error) {
	summary := &Summary{GeneratedAt: time.Now().UTC()}

	err := s.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE placed_at >= date_trunc('day', now())),
			COALESCE(sum(total) FILTER (WHERE placed_at >= date_trunc('day', now()) AND status <> 'CANCELLED'), 0),
			count(*) FILTER (WHERE status = 'PENDING')
		FROM orders`).Scan(&summary.OrdersToday, &summary.RevenueToday, &summary.PendingOrders)
	if err != nil {
		return nil, fmt.Errorf("dashboard orders: %w", err)
	}

	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE is_active`).Scan(&summary.ActiveProducts)
	if err != nil {
		return nil, fmt.Errorf("dashboard products: %w", err)
	}

	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM conversations WHERE status = 'OPEN'`).Scan(&summary.OpenConversations)
	if err != nil {
		return nil, fmt.Errorf("dashboard conversations: %w", err)
	}

	return summary, nil
}
