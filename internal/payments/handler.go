package payments

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

// Handler exposes the payment ledger as a table-driven JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  *observability.Metrics
}

// NewHandler returns a payment handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		metrics:  metrics,
	}
}

// MountRoutes attaches payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/payments", h.List)
	r.Get("/payments/table-config", h.TableConfig)
	r.Get("/payments/export", h.ExportCSV)
	r.Get("/payments/{id}", h.Show)
	r.Post("/payments", h.Record)
	r.Post("/payments/{id}/refund", h.Refund)
	r.Post("/payments/bulk/{action}", h.BulkAction)
	r.Get("/payouts", h.ListPayouts)
	r.Post("/payouts", h.CreatePayout)
}

func (h *Handler) tableConfig(actorID int64) table.Config {
	return table.Config{
		ID:     "payments",
		Title:  "Payments",
		Source: "payments",
		Columns: []table.Column{
			{ID: "reference", Title: "Reference", Type: table.ColumnText, Sortable: true},
			{ID: "order_id", Title: "Order", Type: table.ColumnNumber, Sortable: true},
			{ID: "method", Title: "Method", Type: table.ColumnBadge},
			{ID: "status", Title: "Status", Type: table.ColumnBadge, Sortable: true},
			{ID: "amount", Title: "Amount", Type: table.ColumnNumber, Sortable: true, Align: "right"},
			{ID: "created_at", Title: "Received", Type: table.ColumnDate, Sortable: true},
		},
		Filters: []table.Filter{
			{ID: "status", Label: "Status", Type: table.FilterSelect, Options: []table.FilterOption{
				{Value: string(StatusPending), Label: "Pending"},
				{Value: string(StatusPaid), Label: "Paid"},
				{Value: string(StatusRefunded), Label: "Refunded"},
				{Value: string(StatusFailed), Label: "Failed"},
			}},
			{ID: "method", Label: "Method", Type: table.FilterSelect, Options: []table.FilterOption{
				{Value: "gcash", Label: "GCash"},
				{Value: "cod", Label: "Cash on delivery"},
				{Value: "card", Label: "Card"},
			}},
			{ID: "amount", Label: "Min amount", Type: table.FilterNumber},
			{ID: "created_at", Label: "Received since", Type: table.FilterDate},
		},
		BulkActions: []table.Action{
			{ID: "refund", Label: "Refund selected", Kind: table.ActionBulk, Icon: "wallet",
				RequiresSelection: true, Handler: h.bulkRefund(actorID)},
		},
		Pagination: table.PaginationOptions{Enabled: true, PerPage: 20},
		Sorting: table.SortingOptions{
			Enabled: true,
			Default: &table.DefaultSort{Column: "created_at", Order: table.SortDesc},
		},
		Search: table.SearchOptions{
			Enabled:     true,
			Placeholder: "Search payments",
			Fields:      []table.Accessor{table.Field("reference"), table.Field("method")},
		},
		Export: table.ExportOptions{Enabled: true, Filename: "payments.csv"},
		Audit:  table.AuditOptions{Enabled: true},
	}
}

func (h *Handler) bulkRefund(actorID int64) table.ActionFunc {
	return func(ctx context.Context, _ *table.Row, selected []table.Row) error {
		ids := make([]int64, 0, len(selected))
		for _, row := range selected {
			if id, ok := row["id"].(int64); ok {
				ids = append(ids, id)
			}
		}
		refunded, skipped, err := h.service.RefundMany(ctx, ids, "bulk refund", actorID)
		if err != nil {
			return err
		}
		if len(skipped) > 0 {
			h.logger.Warn("bulk refund skipped payments",
				slog.Int("refunded", len(refunded)),
				slog.Int("skipped", len(skipped)))
		}
		return nil
	}
}

func paymentRows(list []Payment) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, p := range list {
		rows = append(rows, table.Row{
			"id":         p.ID,
			"order_id":   p.OrderID,
			"reference":  p.Reference,
			"method":     p.Method,
			"status":     string(p.Status),
			"amount":     p.Amount,
			"currency":   p.Currency,
			"created_at": p.CreatedAt,
		})
	}
	return rows
}

func (h *Handler) loadStore(r *http.Request) (*table.Store, error) {
	list, err := h.service.List(r.Context())
	if err != nil {
		return nil, err
	}
	store := table.NewStore(h.tableConfig(shared.ActorFromRequest(r)), h.logger)
	store.SetData(paymentRows(list))
	return store, nil
}

// TableConfig describes the payments table for the SPA.
func (h *Handler) TableConfig(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.tableConfig(shared.ActorFromRequest(r)).Describe())
}

// List serves the ledger through the table engine.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	store, err := h.loadStore(r)
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	store.Apply(table.ParamsFromQuery(r.URL.Query()))
	httpx.TableView(w, store.View())
}

// Show returns one payment.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "payment id must be numeric")
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Record registers a collected payment.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	p, err := h.service.Record(r.Context(), req, shared.ActorFromRequest(r))
	if err != nil {
		h.logger.Error("record payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Refund returns one payment to the customer.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "payment id must be numeric")
		return
	}

	var req RefundRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	p, err := h.service.Refund(r.Context(), id, req.Reason, shared.ActorFromRequest(r))
	if err != nil {
		h.logger.Error("refund payment", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
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
	h.metrics.CountAction("payments", actionID)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"dispatched": actionID,
		"selected":   len(store.SelectedRows()),
		"audit":      store.AuditTrail(),
	})
}

// CreatePayout disburses funds to a vendor's GCash wallet.
func (h *Handler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	var req PayoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	payout, err := h.service.Payout(r.Context(), req, shared.ActorFromRequest(r))
	if err != nil {
		h.logger.Error("create payout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payout)
}

// ListPayouts returns past disbursements.
func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPayouts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// ExportCSV streams the filtered ledger as CSV with formatted peso amounts,
// honoring the same query parameters as List but without pagination.
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
	_ = cw.Write([]string{"reference", "order_id", "method", "status", "amount", "received_at"})
	for _, row := range view.Filtered {
		received := ""
		if t, ok := row["created_at"].(time.Time); ok {
			received = t.Format(time.RFC3339)
		}
		amount := ""
		if v, ok := row["amount"].(float64); ok {
			amount = FormatPHP(v)
		}
		_ = cw.Write([]string{
			fmt.Sprint(row["reference"]),
			fmt.Sprint(row["order_id"]),
			fmt.Sprint(row["method"]),
			fmt.Sprint(row["status"]),
			amount,
			received,
		})
	}
	cw.Flush()
}
