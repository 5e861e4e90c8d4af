package audit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/palengke-app/palengke/internal/platform/httpx"
	"github.com/palengke-app/palengke/internal/table"
)

// Handler serves the audit trail listing for the dashboard.
type Handler struct {
	logger   *slog.Logger
	recorder *Recorder
}

// NewHandler returns an audit handler.
func NewHandler(logger *slog.Logger, recorder *Recorder) *Handler {
	return &Handler{logger: logger, recorder: recorder}
}

// MountRoutes attaches audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/audit", h.List)
}

func tableConfig() table.Config {
	return table.Config{
		ID:     "audit",
		Title:  "Audit Trail",
		Source: "audit_logs",
		Columns: []table.Column{
			{ID: "at", Title: "When", Type: table.ColumnDate, Sortable: true},
			{ID: "actor_id", Title: "Actor", Type: table.ColumnNumber},
			{ID: "action", Title: "Action", Type: table.ColumnBadge},
			{ID: "entity", Title: "Entity", Type: table.ColumnText},
			{ID: "entity_id", Title: "Target", Type: table.ColumnText},
		},
		Filters: []table.Filter{
			{ID: "entity", Label: "Entity", Type: table.FilterSelect, Options: []table.FilterOption{
				{Value: "order", Label: "Orders"},
				{Value: "payment", Label: "Payments"},
				{Value: "user", Label: "Users"},
				{Value: "product", Label: "Products"},
			}},
			{ID: "action", Label: "Action", Type: table.FilterText},
			{ID: "at", Label: "Since", Type: table.FilterDate},
		},
		Pagination: table.PaginationOptions{Enabled: true, PerPage: 25},
		Sorting: table.SortingOptions{
			Enabled: true,
			Default: &table.DefaultSort{Column: "at", Order: table.SortDesc},
		},
		Search: table.SearchOptions{
			Enabled: true,
			Fields:  []table.Accessor{table.Field("action"), table.Field("entity"), table.Field("entity_id")},
		},
	}
}

// List serves the audit trail through the table engine.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.recorder.List(r.Context(), 500)
	if err != nil {
		h.logger.Error("list audit entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			"id":        e.ID,
			"actor_id":  e.ActorID,
			"action":    e.Action,
			"entity":    e.Entity,
			"entity_id": e.EntityID,
			"at":        e.At,
		})
	}

	store := table.NewStore(tableConfig(), h.logger)
	store.SetData(rows)
	store.Apply(table.ParamsFromQuery(r.URL.Query()))
	httpx.TableView(w, store.View())
}
