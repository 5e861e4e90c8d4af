package orders

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/palengke-app/palengke/internal/observability"
	"github.com/palengke-app/palengke/internal/platform/httpx"
	"github.com/palengke-app/palengke/internal/shared"
	"github.com/palengke-app/palengke/internal/table"
)

// Handler exposes marketplace orders as a table-driven JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  *observability.Metrics
}

// NewHandler returns an order handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		metrics:  metrics,
	}
}

// MountRoutes attaches order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/table-config", h.TableConfig)
	r.Get("/orders/export", h.ExportCSV)
	r.Get("/orders/{id}", h.Show)
	r.Post("/orders", h.Create)
	r.Post("/orders/{id}/actions/{action}", h.RowAction)
	r.Post("/orders/bulk/{action}", h.BulkAction)
}

func statusOptions() []table.FilterOption {
	return []table.FilterOption{
		{Value: string(StatusPending), Label: "Pending"},
		{Value: string(StatusProcessing), Label: "Processing"},
		{Value: string(StatusShipped), Label: "Shipped"},
		{Value: string(StatusDelivered), Label: "Delivered"},
		{Value: string(StatusCancelled), Label: "Cancelled"},
	}
}

func (h *Handler) tableConfig(actorID int64) table.Config {
	return table.Config{
		ID:     "orders",
		Title:  "Orders",
		Source: "orders",
		Columns: []table.Column{
			{ID: "order_no", Title: "Order #", Type: table.ColumnText, Sortable: true},
			{ID: "customer_name", Title: "Customer", Type: table.ColumnText, Sortable: true},
			{ID: "status", Title: "Status", Type: table.ColumnBadge, Sortable: true},
			{ID: "payment_method", Title: "Payment", Type: table.ColumnBadge},
			{ID: "total", Title: "Total", Type: table.ColumnNumber, Sortable: true, Align: "right"},
			{ID: "placed_at", Title: "Placed", Type: table.ColumnDate, Sortable: true},
		},
		Filters: []table.Filter{
			{ID: "status", Label: "Status", Type: table.FilterSelect, Options: statusOptions()},
			{ID: "payment_method", Label: "Payment", Type: table.FilterSelect, Options: []table.FilterOption{
				{Value: "gcash", Label: "GCash"},
				{Value: "cod", Label: "Cash on delivery"},
				{Value: "card", Label: "Card"},
			}},
			{ID: "total", Label: "Min total", Type: table.FilterNumber},
			{ID: "placed_at", Label: "Placed since", Type: table.FilterDate},
		},
		Actions: []table.Action{
			{ID: "process", Label: "Start processing", Kind: table.ActionButton, Icon: "refresh",
				Handler: h.rowTransition(StatusProcessing, actorID),
				Visible: rowHasStatus(StatusPending)},
			{ID: "ship", Label: "Mark shipped", Kind: table.ActionButton, Icon: "truck",
				Handler: h.rowTransition(StatusShipped, actorID),
				Visible: rowHasStatus(StatusProcessing)},
			{ID: "deliver", Label: "Mark delivered", Kind: table.ActionButton, Icon: "check",
				Handler: h.rowTransition(StatusDelivered, actorID),
				Visible: rowHasStatus(StatusShipped)},
			{ID: "cancel", Label: "Cancel order", Kind: table.ActionDropdown, Icon: "ban",
				Handler: h.rowTransition(StatusCancelled, actorID)},
		},
		BulkActions: []table.Action{
			{ID: "bulk-process", Label: "Start processing", Kind: table.ActionBulk, Icon: "refresh",
				RequiresSelection: true, Handler: h.bulkTransition(StatusProcessing, actorID)},
			{ID: "bulk-cancel", Label: "Cancel selected", Kind: table.ActionBulk, Icon: "ban",
				RequiresSelection: true, Handler: h.bulkTransition(StatusCancelled, actorID)},
		},
		Pagination: table.PaginationOptions{Enabled: true, PerPage: 20},
		Sorting: table.SortingOptions{
			Enabled: true,
			Default: &table.DefaultSort{Column: "placed_at", Order: table.SortDesc},
		},
		Search: table.SearchOptions{
			Enabled:     true,
			Placeholder: "Search orders",
			Fields:      []table.Accessor{table.Field("order_no"), table.Field("customer_name"), table.Field("shipping_address")},
		},
		Export: table.ExportOptions{Enabled: true, Filename: "orders.csv"},
		Audit:  table.AuditOptions{Enabled: true},
	}
}

func rowHasStatus(status OrderStatus) func(table.Row) bool {
	return func(row table.Row) bool {
		return row["status"] == string(status)
	}
}

func (h *Handler) rowTransition(to OrderStatus, actorID int64) table.ActionFunc {
	return func(ctx context.Context, row *table.Row, _ []table.Row) error {
		if row == nil {
			return nil
		}
		id, ok := (*row)["id"].(int64)
		if !ok {
			return fmt.Errorf("order row without numeric id")
		}
		_, err := h.service.Transition(ctx, id, to, actorID, nil)
		return err
	}
}

func (h *Handler) bulkTransition(to OrderStatus, actorID int64) table.ActionFunc {
	return func(ctx context.Context, _ *table.Row, selected []table.Row) error {
		ids := make([]int64, 0, len(selected))
		for _, row := range selected {
			if id, ok := row["id"].(int64); ok {
				ids = append(ids, id)
			}
		}
		updated, skipped, err := h.service.TransitionMany(ctx, ids, to, actorID)
		if err != nil {
			return err
		}
		if len(skipped) > 0 {
			h.logger.Warn("bulk transition skipped orders",
				slog.String("to", string(to)),
				slog.Int("updated", len(updated)),
				slog.Int("skipped", len(skipped)))
		}
		return nil
	}
}

func orderRows(list []Order) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, o := range list {
		rows = append(rows, table.Row{
			"id":               o.ID,
			"order_no":         o.OrderNo,
			"customer_id":      o.CustomerID,
			"customer_name":    o.CustomerName,
			"status":           string(o.Status),
			"payment_method":   o.PaymentMethod,
			"subtotal":         o.Subtotal,
			"shipping_fee":     o.ShippingFee,
			"total":            o.Total,
			"shipping_address": o.ShippingAddress,
			"placed_at":        o.PlacedAt,
		})
	}
	return rows
}

func (h *Handler) loadStore(r *http.Request) (*table.Store, error) {
	list, err := h.service.List(r.Context(), ListOrdersRequest{})
	if err != nil {
		return nil, err
	}
	store := table.NewStore(h.tableConfig(shared.ActorFromRequest(r)), h.logger)
	store.SetData(orderRows(list))
	return store, nil
}

// TableConfig describes the orders table for the SPA.
func (h *Handler) TableConfig(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.tableConfig(shared.ActorFromRequest(r)).Describe())
}

// List serves orders through the table engine.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	store, err := h.loadStore(r)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	store.Apply(table.ParamsFromQuery(r.URL.Query()))
	httpx.TableView(w, store.View())
}

// Show returns one order with its line items.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "order id must be numeric")
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	lines, err := h.service.GetLines(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order": order, "lines": lines})
}

// Create registers an order.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	order, err := h.service.Create(r.Context(), req, shared.ActorFromRequest(r))
	if err != nil {
		h.logger.Error("create order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// RowAction dispatches a configured single-row action.
func (h *Handler) RowAction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "order id must be numeric")
		return
	}
	actionID := chi.URLParam(r, "action")

	store, err := h.loadStore(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var target *table.Row
	for _, row := range store.Snapshot().Rows {
		if row["id"] == id {
			copied := row
			target = &copied
			break
		}
	}
	if target == nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}

	table.NewDispatcher(store, h.logger).Execute(r.Context(), actionID, target)
	h.metrics.CountAction("orders", actionID)

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
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

	store, err := h.loadStore(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	for _, id := range req.IDs {
		store.SelectRow(strconv.FormatInt(id, 10))
	}

	table.NewDispatcher(store, h.logger).ExecuteBulk(r.Context(), actionID)
	h.metrics.CountAction("orders", actionID)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"dispatched": actionID,
		"selected":   len(store.SelectedRows()),
		"audit":      store.AuditTrail(),
	})
}

// ExportCSV streams the filtered and sorted order set as CSV, honoring the
// same query parameters as List but without pagination.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	store, err := h.loadStore(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	params := table.ParamsFromQuery(r.URL.Query())
	params.Page = 1
	store.Apply(params)
	view := store.View()

	cfg := store.Config()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+cfg.Export.Filename+`"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"order_no", "customer", "status", "payment", "total", "placed_at"})
	for _, row := range view.Filtered {
		placed := ""
		if t, ok := row["placed_at"].(time.Time); ok {
			placed = t.Format(time.RFC3339)
		}
		_ = cw.Write([]string{
			fmt.Sprint(row["order_no"]),
			fmt.Sprint(row["customer_name"]),
			fmt.Sprint(row["status"]),
			fmt.Sprint(row["payment_method"]),
			strconv.FormatFloat(row["total"].(float64), 'f', 2, 64),
			placed,
		})
	}
	cw.Flush()
}
