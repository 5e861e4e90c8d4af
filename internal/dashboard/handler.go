package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/palengke-app/palengke/internal/platform/httpx"
)

// Handler serves the landing-page summary.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler returns a dashboard handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.Summary)
	r.Post("/dashboard/refresh", h.Refresh)
}

// Summary returns the cached headline numbers.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// Refresh invalidates the cache so the next read recomputes.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.service.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
