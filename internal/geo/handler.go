package geo

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

// Enqueuer defers backfill work to the background worker.
type Enqueuer interface {
	EnqueueGeoBackfill(ctx context.Context, payload jobs.GeoBackfillPayload) (*asynq.TaskInfo, error)
}

// Handler exposes geocoding to the SPA's map view.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	queue    Enqueuer
	validate *validator.Validate
}

// NewHandler returns a geo handler.
func NewHandler(logger *slog.Logger, service *Service, queue Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, queue: queue, validate: validator.New()}
}

// MountRoutes attaches geo routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/geo/geocode", h.Geocode)
	r.Post("/geo/geocode/batch", h.GeocodeBatch)
	r.Post("/geo/backfill", h.Backfill)
}

// Geocode resolves the "address" query parameter.
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		httpx.Problem(w, http.StatusBadRequest, "Missing Address", "address query parameter is required")
		return
	}

	coords, err := h.service.Geocode(r.Context(), address)
	if err != nil {
		if err == ErrNoResult {
			httpx.Problem(w, http.StatusNotFound, "No Result", "address could not be resolved")
			return
		}
		h.logger.Error("geocode", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Geocoder Unavailable", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, coords)
}

// GeocodeBatch resolves a list of addresses sequentially. Large batches are
// better dispatched through the background worker.
func (h *Handler) GeocodeBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Addresses []string `json:"addresses" validate:"required,min=1,max=25,dive,required"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	results, err := h.service.GeocodeBatch(r.Context(), req.Addresses)
	if err != nil {
		h.logger.Error("geocode batch", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Geocoder Unavailable", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, results)
}

// Backfill queues addresses for background resolution; resolution happens on
// the worker at the upstream's pace. An empty list lets the worker pick the
// recent order shipping addresses itself.
func (h *Handler) Backfill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Addresses []string `json:"addresses" validate:"omitempty,max=500,dive,required"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	info, err := h.queue.EnqueueGeoBackfill(r.Context(), jobs.GeoBackfillPayload{
		Addresses: req.Addresses,
	})
	if err != nil {
		h.logger.Error("enqueue geo backfill", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", err.Error())
		return
	}

	httpx.JSON(w, http.StatusAccepted, map[string]any{
		"task_id": info.ID,
		"queue":   info.Queue,
	})
}
