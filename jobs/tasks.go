package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPushNotify delivers a push notification through the push gateway.
	TaskPushNotify = "notify:push"
	// TaskGeoBackfill geocodes shipping addresses that have no coordinates yet.
	TaskGeoBackfill = "geo:backfill"
)

// PushPayload describes one push notification to deliver.
type PushPayload struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	UserIDs []string `json:"user_ids"`
}

// NewPushTask constructs a push delivery task.
func NewPushTask(payload PushPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPushNotify, data), nil
}

// GeoBackfillPayload lists the addresses to resolve.
type GeoBackfillPayload struct {
	Addresses []string `json:"addresses"`
}

// NewGeoBackfillTask constructs a geocode backfill task.
func NewGeoBackfillTask(payload GeoBackfillPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGeoBackfill, data), nil
}
