package geo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Service resolves shipping addresses to coordinates. Lookups hit a Redis
// cache first; misses go to the geocoder one at a time, paced by a ticker so
// batches respect the upstream rate limit.
type Service struct {
	logger   *slog.Logger
	client   *Client
	cache    *redis.Client
	interval time.Duration
	ttl      time.Duration
}

// NewService returns a geocoding service. interval is the minimum spacing
// between upstream calls, ttl the cache lifetime of resolved addresses.
func NewService(logger *slog.Logger, client *Client, cache *redis.Client, interval, ttl time.Duration) *Service {
	if interval <= 0 {
		interval = 1100 * time.Millisecond
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{logger: logger, client: client, cache: cache, interval: interval, ttl: ttl}
}

func cacheKey(address string) string {
	return "geo:addr:" + strings.ToLower(strings.TrimSpace(address))
}

// Geocode resolves one address, consulting the cache first.
func (s *Service) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	if coords, ok := s.cached(ctx, address); ok {
		return coords, nil
	}

	coords, err := s.client.Search(ctx, address)
	if err != nil {
		return nil, err
	}
	s.store(ctx, address, coords)
	return coords, nil
}

// BatchResult pairs an address with its resolution outcome.
type BatchResult struct {
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// GeocodeBatch resolves addresses sequentially. Cache hits return
// immediately; each upstream call waits for the ticker, so a batch of N
// misses takes at least N*interval. A failed address does not abort the
// batch.
func (s *Service) GeocodeBatch(ctx context.Context, addresses []string) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(addresses))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for _, address := range addresses {
		if coords, ok := s.cached(ctx, address); ok {
			results = append(results, BatchResult{Address: address, Coordinates: coords})
			continue
		}

		select {
		case <-ctx.Done():
			return results, ctx.Err()
		case <-ticker.C:
		}

		coords, err := s.client.Search(ctx, address)
		if err != nil {
			if !errors.Is(err, ErrNoResult) {
				s.logger.Warn("geocode failed", slog.String("address", address), slog.Any("error", err))
			}
			results = append(results, BatchResult{Address: address, Error: err.Error()})
			continue
		}
		s.store(ctx, address, coords)
		results = append(results, BatchResult{Address: address, Coordinates: coords})
	}
	return results, nil
}

func (s *Service) cached(ctx context.Context, address string) (*Coordinates, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(address)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("geo cache read", slog.Any("error", err))
		}
		return nil, false
	}
	var coords Coordinates
	if err := json.Unmarshal(raw, &coords); err != nil {
		return nil, false
	}
	return &coords, true
}

func (s *Service) store(ctx context.Context, address string, coords *Coordinates) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(coords)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(address), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("geo cache write", slog.Any("error", err))
	}
}
