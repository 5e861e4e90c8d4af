package geo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palengke-app/palengke/jobs"
)

type fakeQueue struct {
	payloads []jobs.GeoBackfillPayload
}

func (f *fakeQueue) EnqueueGeoBackfill(ctx context.Context, payload jobs.GeoBackfillPayload) (*asynq.TaskInfo, error) {
	f.payloads = append(f.payloads, payload)
	return &asynq.TaskInfo{ID: "task-1", Queue: "default"}, nil
}

func newBackfillServer(t *testing.T, srvURL string) (*httptest.Server, *fakeQueue) {
	t.Helper()
	svc, _ := newTestService(t, srvURL)
	queue := &fakeQueue{}
	logger := slog.New(slog.NewTextHandler(discard{}, nil))
	h := NewHandler(logger, svc, queue)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return httptest.NewServer(r), queue
}

func TestBackfillEnqueuesTask(t *testing.T) {
	var hits atomic.Int64
	nominatim := fakeNominatim(&hits)
	defer nominatim.Close()

	srv, queue := newBackfillServer(t, nominatim.URL)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/geo/backfill", "application/json",
		strings.NewReader(`{"addresses":["123 Rizal St, Quezon City"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body struct {
		TaskID string `json:"task_id"`
		Queue  string `json:"queue"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "task-1", body.TaskID)
	assert.Equal(t, "default", body.Queue)

	require.Len(t, queue.payloads, 1)
	assert.Equal(t, []string{"123 Rizal St, Quezon City"}, queue.payloads[0].Addresses)

	// resolution is deferred to the worker, nothing hits the geocoder here
	assert.Equal(t, int64(0), hits.Load())
}

func TestBackfillAllowsEmptyAddressList(t *testing.T) {
	var hits atomic.Int64
	nominatim := fakeNominatim(&hits)
	defer nominatim.Close()

	srv, queue := newBackfillServer(t, nominatim.URL)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/geo/backfill", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Len(t, queue.payloads, 1)
	assert.Empty(t, queue.payloads[0].Addresses)
}

func TestBackfillTaskFallsBackToSource(t *testing.T) {
	var hits atomic.Int64
	nominatim := fakeNominatim(&hits)
	defer nominatim.Close()

	svc, _ := newTestService(t, nominatim.URL)
	logger := slog.New(slog.NewTextHandler(discard{}, nil))

	var sourceCalls int
	source := func(ctx context.Context) ([]string, error) {
		sourceCalls++
		return []string{"Divisoria, Manila", "Quiapo, Manila"}, nil
	}

	task, err := jobs.NewGeoBackfillTask(jobs.GeoBackfillPayload{})
	require.NoError(t, err)

	handler := BackfillTaskHandler(logger, svc, source)
	require.NoError(t, handler(context.Background(), task))

	assert.Equal(t, 1, sourceCalls)
	assert.Equal(t, int64(2), hits.Load())
}

func TestBackfillTaskPrefersPayloadAddresses(t *testing.T) {
	var hits atomic.Int64
	nominatim := fakeNominatim(&hits)
	defer nominatim.Close()

	svc, _ := newTestService(t, nominatim.URL)
	logger := slog.New(slog.NewTextHandler(discard{}, nil))

	source := func(ctx context.Context) ([]string, error) {
		t.Fatal("source must not be consulted when the payload carries addresses")
		return nil, nil
	}

	task, err := jobs.NewGeoBackfillTask(jobs.GeoBackfillPayload{Addresses: []string{"Binondo, Manila"}})
	require.NoError(t, err)

	handler := BackfillTaskHandler(logger, svc, source)
	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, int64(1), hits.Load())
}
