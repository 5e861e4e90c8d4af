package navigation

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/palengke-app/palengke/internal/observability"
	"github.com/palengke-app/palengke/internal/platform/httpx"
	"github.com/palengke-app/palengke/internal/shared"
	"github.com/palengke-app/palengke/internal/table"
)

// Handler exposes the sidebar registry as a table-driven JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  *observability.Metrics
}

// NewHandler returns a navigation handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		metrics:  metrics,
	}
}

// MountRoutes attaches navigation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/navigation", h.List)
	r.Get("/navigation/table-config", h.TableConfig)
	r.Get("/navigation/sections", h.Sections)
	r.Get("/navigation/{id}", h.Show)
	r.Post("/navigation", h.Create)
	r.Patch("/navigation/{id}", h.Update)
	r.Delete("/navigation/{id}", h.Delete)
	r.Post("/navigation/bulk/{action}", h.BulkAction)
}

func (h *Handler) tableConfig(actorID int64) table.Config {
	return table.Config{
		ID:     "navigation",
		Title:  "Navigation",
		Source: "navigation_items",
		Columns: []table.Column{
			{ID: "label", Title: "Label", Type: table.ColumnText, Sortable: true},
			{ID: "icon", Title: "Icon", Type: table.ColumnText},
			{ID: "path", Title: "Path", Type: table.ColumnText, Sortable: true},
			{ID: "section", Title: "Section", Type: table.ColumnBadge, Sortable: true},
			{ID: "position", Title: "Position", Type: table.ColumnNumber, Sortable: true, Align: "right"},
			{ID: "is_active", Title: "Visible", Type: table.ColumnBadge},
		},
		Filters: []table.Filter{
			{ID: "section", Label: "Section", Type: table.FilterText},
			{ID: "is_active", Label: "Visible", Type: table.FilterBoolean},
		},
		BulkActions: []table.Action{
			{ID: "show", Label: "Show in sidebar", Kind: table.ActionBulk, Icon: "eye",
				RequiresSelection: true, Handler: h.bulkSetActive(true, actorID)},
			{ID: "hide", Label: "Hide from sidebar", Kind: table.ActionBulk, Icon: "ban",
				RequiresSelection: true, Handler: h.bulkSetActive(false, actorID)},
		},
		Pagination: table.PaginationOptions{Enabled: true, PerPage: 50},
		Sorting: table.SortingOptions{
			Enabled: true,
			Default: &table.DefaultSort{Column: "section", Order: table.SortAsc},
		},
		Search: table.SearchOptions{
			Enabled:     true,
			Placeholder: "Search navigation",
			Fields:      []table.Accessor{table.Field("label"), table.Field("path"), table.Field("section")},
		},
		Audit: table.AuditOptions{Enabled: true},
	}
}

func (h *Handler) bulkSetActive(active bool, actorID int64) table.ActionFunc {
	return func(ctx context.Context, _ *table.Row, selected []table.Row) error {
		ids := make([]int64, 0, len(selected))
		for _, row := range selected {
			if id, ok := row["id"].(int64); ok {
				ids = append(ids, id)
			}
		}
		return h.service.SetActive(ctx, ids, active, actorID)
	}
}

func itemRows(list []Item) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, it := range list {
		rows = append(rows, table.Row{
			"id":         it.ID,
			"label":      it.Label,
			"icon":       it.Icon,
			"path":       it.Path,
			"section":    it.Section,
			"position":   it.Position,
			"is_active":  it.IsActive,
			"created_at": it.CreatedAt,
		})
	}
	return rows
}

// TableConfig describes the navigation table for the SPA.
func (h *Handler) TableConfig(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.tableConfig(shared.ActorFromRequest(r)).Describe())
}

// List serves items through the table engine.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list navigation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	store := table.NewStore(h.tableConfig(shared.ActorFromRequest(r)), h.logger)
	store.SetData(itemRows(list))
	store.Apply(table.ParamsFromQuery(r.URL.Query()))
	httpx.TableView(w, store.View())
}

// Sections returns active items grouped for the sidebar.
func (h *Handler) Sections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.service.Sections(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sections)
}

// Show returns one item.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "navigation id must be numeric")
		return
	}
	it, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

// Create registers an item.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	it, err := h.service.Create(r.Context(), req, shared.ActorFromRequest(r))
	if err != nil {
		h.logger.Error("create navigation item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, it)
}

// Update applies a partial update.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "navigation id must be numeric")
		return
	}

	var req UpdateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	it, err := h.service.Update(r.Context(), id, req, shared.ActorFromRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

// Delete removes an item.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "navigation id must be numeric")
		return
	}
	if err := h.service.Delete(r.Context(), id, shared.ActorFromRequest(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkAction dispatches a configured bulk action against the posted ids.
func (h *Handler) BulkAction(w http.ResponseWriter, r *http.Request) {
	actionID := chi.URLParam(r, "action")

	var req struct {
		IDs []int64 `json:"ids" validate:"required,min=1"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	store := table.NewStore(h.tableConfig(shared.ActorFromRequest(r)), h.logger)
	store.SetData(itemRows(list))
	for _, id := range req.IDs {
		store.SelectRow(strconv.FormatInt(id, 10))
	}

	table.NewDispatcher(store, h.logger).ExecuteBulk(r.Context(), actionID)
	h.metrics.CountAction("navigation", actionID)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"dispatched": actionID,
		"selected":   len(store.SelectedRows()),
		"audit":      store.AuditTrail(),
	})
}
