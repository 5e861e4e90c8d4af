package notify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/palengke-app/palengke/internal/platform/httpx"
	"github.com/palengke-app/palengke/jobs"
)

// Enqueuer defers push delivery to the background worker.
type Enqueuer interface {
	EnqueuePush(ctx context.Context, payload jobs.PushPayload) (*asynq.TaskInfo, error)
}

// Handler accepts push requests and queues them for delivery.
type Handler struct {
	logger   *slog.Logger
	queue    Enqueuer
	validate *validator.Validate
}

// NewHandler returns a notify handler.
func NewHandler(logger *slog.Logger, queue Enqueuer) *Handler {
	return &Handler{logger: logger, queue: queue, validate: validator.New()}
}

// MountRoutes attaches notify routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/notifications", h.Enqueue)
}

// Enqueue queues a push notification; delivery happens on the worker.
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string   `json:"title" validate:"required,max=128"`
		Body    string   `json:"body" validate:"required,max=1024"`
		UserIDs []string `json:"user_ids" validate:"required,min=1,dive,required"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	info, err := h.queue.EnqueuePush(r.Context(), jobs.PushPayload{
		Title:   req.Title,
		Body:    req.Body,
		UserIDs: req.UserIDs,
	})
	if err != nil {
		h.logger.Error("enqueue push", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", err.Error())
		return
	}

	httpx.JSON(w, http.StatusAccepted, map[string]any{
		"task_id": info.ID,
		"queue":   info.Queue,
	})
}
