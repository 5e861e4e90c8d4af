package chat

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/palengke-app/palengke/internal/observability"
	"github.com/palengke-app/palengke/internal/platform/httpx"
	"github.com/palengke-app/palengke/internal/shared"
	"github.com/palengke-app/palengke/internal/table"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler exposes support conversations and the websocket relay.
type Handler struct {
	logger  *slog.Logger
	repo    Repository
	hub     *Hub
	metrics *observability.Metrics
}

// NewHandler returns a chat handler.
func NewHandler(logger *slog.Logger, repo Repository, hub *Hub, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, repo: repo, hub: hub, metrics: metrics}
}

// MountRoutes attaches chat routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/chat/conversations", h.ListConversations)
	r.Get("/chat/conversations/table-config", h.TableConfig)
	r.Get("/chat/conversations/{id}/messages", h.History)
	r.Get("/chat/conversations/{id}/ws", h.Attach)
	r.Post("/chat/bulk/{action}", h.BulkAction)
}

func (h *Handler) tableConfig() table.Config {
	return table.Config{
		ID:     "conversations",
		Title:  "Support",
		Source: "conversations",
		Columns: []table.Column{
			{ID: "customer_name", Title: "Customer", Type: table.ColumnText, Sortable: true},
			{ID: "last_message", Title: "Last message", Type: table.ColumnText},
			{ID: "status", Title: "Status", Type: table.ColumnBadge, Sortable: true},
			{ID: "updated_at", Title: "Updated", Type: table.ColumnDate, Sortable: true},
		},
		Filters: []table.Filter{
			{ID: "status", Label: "Status", Type: table.FilterSelect, Options: []table.FilterOption{
				{Value: string(ConversationOpen), Label: "Open"},
				{Value: string(ConversationClosed), Label: "Closed"},
			}},
		},
		BulkActions: []table.Action{
			{ID: "close", Label: "Close selected", Kind: table.ActionBulk, Icon: "x",
				RequiresSelection: true, Handler: h.bulkSetStatus(ConversationClosed)},
			{ID: "reopen", Label: "Reopen selected", Kind: table.ActionBulk, Icon: "refresh",
				RequiresSelection: true, Handler: h.bulkSetStatus(ConversationOpen)},
		},
		Pagination: table.PaginationOptions{Enabled: true, PerPage: 20},
		Sorting: table.SortingOptions{
			Enabled: true,
			Default: &table.DefaultSort{Column: "updated_at", Order: table.SortDesc},
		},
		Search: table.SearchOptions{
			Enabled:     true,
			Placeholder: "Search conversations",
			Fields:      []table.Accessor{table.Field("customer_name"), table.Field("last_message")},
		},
		Audit: table.AuditOptions{Enabled: true},
	}
}

func (h *Handler) bulkSetStatus(status ConversationStatus) table.ActionFunc {
	return func(ctx context.Context, _ *table.Row, selected []table.Row) error {
		for _, row := range selected {
			id, ok := row["id"].(int64)
			if !ok {
				continue
			}
			if err := h.repo.SetConversationStatus(ctx, id, status); err != nil {
				return fmt.Errorf("conversation %d: %w", id, err)
			}
		}
		return nil
	}
}

func conversationRows(list []Conversation) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, c := range list {
		rows = append(rows, table.Row{
			"id":            c.ID,
			"customer_id":   c.CustomerID,
			"customer_name": c.CustomerName,
			"status":        string(c.Status),
			"last_message":  c.LastMessage,
			"updated_at":    c.UpdatedAt,
		})
	}
	return rows
}

// TableConfig describes the conversations table for the SPA.
func (h *Handler) TableConfig(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.tableConfig().Describe())
}

// ListConversations serves conversations through the table engine.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListConversations(r.Context())
	if err != nil {
		h.logger.Error("list conversations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	store := table.NewStore(h.tableConfig(), h.logger)
	store.SetData(conversationRows(list))
	store.Apply(table.ParamsFromQuery(r.URL.Query()))
	httpx.TableView(w, store.View())
}

// History returns a conversation's messages, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "conversation id must be numeric")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.repo.Messages(r.Context(), id, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, messages)
}

// Attach upgrades the request and joins the caller to a conversation.
func (h *Handler) Attach(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "conversation id must be numeric")
		return
	}
	conversation, err := h.repo.GetConversation(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if conversation.Status != ConversationOpen {
		httpx.Problem(w, http.StatusConflict, "Conversation Closed", "reopen the conversation before attaching")
		return
	}

	actorID := shared.ActorFromRequest(r)
	senderName := r.URL.Query().Get("name")
	if senderName == "" {
		senderName = "agent"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade", slog.Any("error", err))
		return
	}

	client := &Client{
		hub:            h.hub,
		conn:           conn,
		send:           make(chan []byte, 64),
		conversationID: id,
		senderID:       actorID,
		senderName:     senderName,
	}
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BulkAction dispatches a configured bulk action against the posted ids.
func (h *Handler) BulkAction(w http.ResponseWriter, r *http.Request) {
	actionID := chi.URLParam(r, "action")

	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil || len(req.IDs) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "ids are required")
		return
	}

	list, err := h.repo.ListConversations(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	store := table.NewStore(h.tableConfig(), h.logger)
	store.SetData(conversationRows(list))
	for _, id := range req.IDs {
		store.SelectRow(strconv.FormatInt(id, 10))
	}

	table.NewDispatcher(store, h.logger).ExecuteBulk(r.Context(), actionID)
	h.metrics.CountAction("conversations", actionID)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"dispatched": actionID,
		"selected":   len(store.SelectedRows()),
		"audit":      store.AuditTrail(),
	})
}
