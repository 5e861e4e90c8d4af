package geo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeNominatim(hits *atomic.Int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		q := r.URL.Query().Get("q")
		if q == "nowhere" {
			_ = json.NewEncoder(w).Encode([]nominatimResult{})
			return
		}
		_ = json.NewEncoder(w).Encode([]nominatimResult{
			{Lat: "14.5995", Lon: "120.9842", DisplayName: "Manila, Philippines"},
		})
	}))
}

func newTestService(t *testing.T, srvURL string) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(discard{}, nil))
	svc := NewService(logger, NewClient(srvURL), cache, time.Millisecond, time.Hour)
	return svc, mr
}

func TestGeocodeCachesResult(t *testing.T) {
	var hits atomic.Int64
	srv := fakeNominatim(&hits)
	defer srv.Close()

	svc, _ := newTestService(t, srv.URL)

	coords, err := svc.Geocode(context.Background(), "Divisoria, Manila")
	require.NoError(t, err)
	assert.InDelta(t, 14.5995, coords.Lat, 0.0001)
	assert.Equal(t, "Manila, Philippines", coords.DisplayName)

	// second lookup is served from cache
	_, err = svc.Geocode(context.Background(), "Divisoria, Manila")
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Load())

	// same address with different casing hits the same key
	_, err = svc.Geocode(context.Background(), "DIVISORIA, MANILA")
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Load())
}

func TestGeocodeBatchContinuesPastFailures(t *testing.T) {
	var hits atomic.Int64
	srv := fakeNominatim(&hits)
	defer srv.Close()

	svc, _ := newTestService(t, srv.URL)

	results, err := svc.GeocodeBatch(context.Background(), []string{
		"Divisoria, Manila",
		"nowhere",
		"Quiapo, Manila",
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NotNil(t, results[0].Coordinates)
	assert.Nil(t, results[1].Coordinates)
	assert.NotEmpty(t, results[1].Error)
	assert.NotNil(t, results[2].Coordinates)
}

func TestGeocodeBatchHonorsCancellation(t *testing.T) {
	var hits atomic.Int64
	srv := fakeNominatim(&hits)
	defer srv.Close()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(discard{}, nil))
	// long interval so the second lookup is still waiting when we cancel
	svc := NewService(logger, NewClient(srv.URL), cache, time.Minute, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := svc.GeocodeBatch(ctx, []string{"Divisoria, Manila", "Quiapo, Manila"})
	assert.ErrorIs(t, err, context.Canceled)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
