package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/palengke-app/palengke/internal/jobs"
	"github.com/palengke-app/palengke/jobs"
)

// PushTaskHandler processes queued push deliveries. Registered on the worker
// under jobs.TaskPushNotify.
func PushTaskHandler(logger *slog.Logger, client *Client) asynq.HandlerFunc {
	metrics := jobmetrics.NewMetrics(nil)
	return func(ctx context.Context, t *asynq.Task) error {
		var payload jobs.PushPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		tracker := metrics.Track(jobs.TaskPushNotify)
		err := client.Send(ctx, Notification{
			Title:   payload.Title,
			Body:    payload.Body,
			UserIDs: payload.UserIDs,
		})
		if err != nil {
			logger.Error("push delivery failed", slog.Any("error", err),
				slog.Int("recipients", len(payload.UserIDs)))
			return tracker.End(err)
		}
		logger.Info("push delivered", slog.Int("recipients", len(payload.UserIDs)))
		return tracker.End(nil)
	}
}
