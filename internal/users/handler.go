package users

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

// Handler exposes account management as a table-driven JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  *observability.Metrics
}

// NewHandler returns a user handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		metrics:  metrics,
	}
}

// MountRoutes attaches user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.List)
	r.Get("/users/table-config", h.TableConfig)
	r.Get("/users/{id}", h.Show)
	r.Post("/users", h.Create)
	r.Patch("/users/{id}", h.Update)
	r.Post("/users/{id}/reset-password", h.ResetPassword)
	r.Post("/users/bulk/{action}", h.BulkAction)
}

func (h *Handler) tableConfig(actorID int64) table.Config {
	return table.Config{
		ID:     "users",
		Title:  "Users",
		Source: "users",
		Columns: []table.Column{
			{ID: "name", Title: "Name", Type: table.ColumnText, Sortable: true},
			{ID: "email", Title: "Email", Type: table.ColumnText, Sortable: true},
			{ID: "role", Title: "Role", Type: table.ColumnBadge},
			{ID: "phone", Title: "Phone", Type: table.ColumnText},
			{ID: "is_active", Title: "Active", Type: table.ColumnBadge},
			{ID: "created_at", Title: "Joined", Type: table.ColumnDate, Sortable: true},
			{ID: "last_login_at", Title: "Last login", Type: table.ColumnDate, Sortable: true},
		},
		Filters: []table.Filter{
			{ID: "role", Label: "Role", Type: table.FilterSelect, Options: []table.FilterOption{
				{Value: string(RoleAdmin), Label: "Admin"},
				{Value: string(RoleStaff), Label: "Staff"},
				{Value: string(RoleCustomer), Label: "Customer"},
			}},
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
			Default: &table.DefaultSort{Column: "created_at", Order: table.SortDesc},
		},
		Search: table.SearchOptions{
			Enabled:     true,
			Placeholder: "Search users",
			Fields:      []table.Accessor{table.Field("name"), table.Field("email"), table.Field("phone")},
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

func userRows(list []User) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, u := range list {
		row := table.Row{
			"id":         u.ID,
			"name":       u.Name,
			"email":      u.Email,
			"role":       string(u.Role),
			"phone":      u.Phone,
			"is_active":  u.IsActive,
			"created_at": u.CreatedAt,
		}
		if u.LastLoginAt != nil {
			row["last_login_at"] = *u.LastLoginAt
		}
		rows = append(rows, row)
	}
	return rows
}

// TableConfig describes the user table for the SPA.
func (h *Handler) TableConfig(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.tableConfig(shared.ActorFromRequest(r)).Describe())
}

// List serves accounts through the table engine.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	store := table.NewStore(h.tableConfig(shared.ActorFromRequest(r)), h.logger)
	store.SetData(userRows(list))
	store.Apply(table.ParamsFromQuery(r.URL.Query()))
	httpx.TableView(w, store.View())
}

// Show returns one account.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "user id must be numeric")
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// Create registers an account.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	u, err := h.service.Create(r.Context(), req, shared.ActorFromRequest(r))
	if err != nil {
		h.logger.Error("create user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

// Update applies a partial account update.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "user id must be numeric")
		return
	}

	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	u, err := h.service.Update(r.Context(), id, req, shared.ActorFromRequest(r))
	if err != nil {
		h.logger.Error("update user", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// ResetPassword replaces the account password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "user id must be numeric")
		return
	}

	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.ResetPassword(r.Context(), id, req.Password, shared.ActorFromRequest(r)); err != nil {
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
	store.SetData(userRows(list))
	for _, id := range req.IDs {
		store.SelectRow(strconv.FormatInt(id, 10))
	}

	table.NewDispatcher(store, h.logger).ExecuteBulk(r.Context(), actionID)
	h.metrics.CountAction("users", actionID)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"dispatched": actionID,
		"selected":   len(store.SelectedRows()),
		"audit":      store.AuditTrail(),
	})
}
