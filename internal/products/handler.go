package products

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

// Handler exposes the product catalog as a table-driven JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  *observability.Metrics
}

// NewHandler returns a product handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		metrics:  metrics,
	}
}

// MountRoutes attaches product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Get("/products/table-config", h.TableConfig)
	r.Get("/products/{id}", h.Show)
	r.Post("/products", h.Create)
	r.Patch("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
	r.Post("/products/bulk/{action}", h.BulkAction)
}

func (h *Handler) tableConfig(actorID int64) table.Config {
	return table.Config{
		ID:     "products",
		Title:  "Products",
		Source: "products",
		Columns: []table.Column{
			{ID: "image_url", Title: "", Type: table.ColumnImage, Width: "48px"},
			{ID: "sku", Title: "SKU", Type: table.ColumnText, Sortable: true},
			{ID: "name", Title: "Name", Type: table.ColumnText, Sortable: true},
			{ID: "category", Title: "Category", Type: table.ColumnBadge},
			{ID: "price", Title: "Price", Type: table.ColumnNumber, Sortable: true, Align: "right"},
			{ID: "stock", Title: "Stock", Type: table.ColumnNumber, Sortable: true, Align: "right"},
			{ID: "is_active", Title: "Active", Type: table.ColumnBadge},
			{ID: "created_at", Title: "Added", Type: table.ColumnDate, Sortable: true},
		},
		Filters: []table.Filter{
			{ID: "category", Label: "Category", Type: table.FilterText},
			{ID: "price", Label: "Min price", Type: table.FilterNumber},
			{ID: "stock", Label: "Min stock", Type: table.FilterNumber},
			{ID: "is_active", Label: "Active", Type: table.FilterBoolean},
		},
		BulkActions: []table.Action{
			{
				ID: "activate", Label: "Activate", Kind: table.ActionBulk, Icon: "check",
				RequiresSelection: true,
				Handler:           h.bulkSetActive(true, actorID),
			},
			{
				ID: "deactivate", Label: "Deactivate", Kind: table.ActionBulk, Icon: "ban",
				RequiresSelection: true,
				Handler:           h.bulkSetActive(false, actorID),
			},
		},
		Pagination: table.PaginationOptions{Enabled: true, PerPage: 20},
		Sorting: table.SortingOptions{
			Enabled: true,
			Default: &table.DefaultSort{Column: "name", Order: table.SortAsc},
		},
		Search: table.SearchOptions{
			Enabled:     true,
			Placeholder: "Search products",
			Fields:      []table.Accessor{table.Field("sku"), table.Field("name"), table.Field("category")},
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

func productRows(list []Product) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, p := range list {
		rows = append(rows, table.Row{
			"id":         p.ID,
			"sku":        p.SKU,
			"name":       p.Name,
			"category":   p.Category,
			"price":      p.Price,
			"stock":      p.Stock,
			"image_url":  p.ImageURL,
			"is_active":  p.IsActive,
			"created_at": p.CreatedAt,
		})
	}
	return rows
}

// TableConfig describes the product table for the SPA: columns, filters and
// available bulk actions.
func (h *Handler) TableConfig(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.tableConfig(shared.ActorFromRequest(r)).Describe())
}

// List serves the catalog through the table engine.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	store := table.NewStore(h.tableConfig(shared.ActorFromRequest(r)), h.logger)
	store.SetData(productRows(list))
	store.Apply(table.ParamsFromQuery(r.URL.Query()))
	httpx.TableView(w, store.View())
}

// Show returns one product.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Create inserts a product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	p, err := h.service.Create(r.Context(), req, shared.ActorFromRequest(r))
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update applies a partial update.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
		return
	}

	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	p, err := h.service.Update(r.Context(), id, req, shared.ActorFromRequest(r))
	if err != nil {
		h.logger.Error("update product", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete removes a product.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be numeric")
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
	store.SetData(productRows(list))
	for _, id := range req.IDs {
		store.SelectRow(strconv.FormatInt(id, 10))
	}

	table.NewDispatcher(store, h.logger).ExecuteBulk(r.Context(), actionID)
	h.metrics.CountAction("products", actionID)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"dispatched": actionID,
		"selected":   len(store.SelectedRows()),
		"audit":      store.AuditTrail(),
	})
}
