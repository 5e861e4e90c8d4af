package geo

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/palengke-app/palengke/internal/jobs"
	"github.com/palengke-app/palengke/jobs"
)

// AddressSource lists the addresses to refresh when a backfill task carries
// none. The worker wires this to the recent order shipping addresses.
type AddressSource func(ctx context.Context) ([]string, error)

// BackfillTaskHandler geocodes queued addresses on the worker, where the
// per-request pacing does not block an HTTP caller. Registered under
// jobs.TaskGeoBackfill.
func BackfillTaskHandler(logger *slog.Logger, service *Service, source AddressSource) asynq.HandlerFunc {
	metrics := jobmetrics.NewMetrics(nil)
	return func(ctx context.Context, t *asynq.Task) error {
		var payload jobs.GeoBackfillPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		tracker := metrics.Track(jobs.TaskGeoBackfill)

		addresses := payload.Addresses
		if len(addresses) == 0 && source != nil {
			var err error
			addresses, err = source(ctx)
			if err != nil {
				return tracker.End(err)
			}
		}
		if len(addresses) == 0 {
			logger.Info("geocode backfill skipped, nothing to resolve")
			return tracker.End(nil)
		}

		results, err := service.GeocodeBatch(ctx, addresses)
		if err != nil {
			return tracker.End(err)
		}

		resolved := 0
		for _, r := range results {
			if r.Coordinates != nil {
				resolved++
			}
		}
		logger.Info("geocode backfill done",
			slog.Int("requested", len(addresses)),
			slog.Int("resolved", resolved))
		return tracker.End(nil)
	}
}
