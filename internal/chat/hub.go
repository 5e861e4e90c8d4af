package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Hub relays messages between everyone attached to a conversation and
// persists each line to history. One hub serves all conversations; clients
// are bucketed by conversation id.
type Hub struct {
	logger *slog.Logger
	repo   Repository

	register   chan *Client
	unregister chan *Client
	broadcast  chan Message

	mu    sync.RWMutex
	rooms map[int64]map[*Client]bool
}

// NewHub returns a hub. Call Run before attaching clients.
func NewHub(logger *slog.Logger, repo Repository) *Hub {
	return &Hub{
		logger:     logger,
		repo:       repo,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 64),
		rooms:      make(map[int64]map[*Client]bool),
	}
}

// Run drives the hub until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.conversationID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[c.conversationID] = room
			}
			room[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.conversationID]; ok {
				if room[c] {
					delete(room, c)
					close(c.send)
				}
				if len(room) == 0 {
					delete(h.rooms, c.conversationID)
				}
			}
			h.mu.Unlock()
		case m := <-h.broadcast:
			if err := h.repo.SaveMessage(ctx, m); err != nil {
				h.logger.Error("persist chat message", slog.Any("error", err),
					slog.Int64("conversation_id", m.ConversationID))
			}
			payload, err := json.Marshal(m)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for c := range h.rooms[m.ConversationID] {
				select {
				case c.send <- payload:
				default:
					// slow consumer, drop it
					go func(c *Client) { h.unregister <- c }(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for c := range room {
			delete(room, c)
			close(c.send)
		}
	}
	h.rooms = make(map[int64]map[*Client]bool)
}

// RoomSize reports how many clients are attached to a conversation.
func (h *Hub) RoomSize(conversationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

// Client is one websocket attachment to a conversation.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	conversationID int64
	senderID       int64
	senderName     string
}

// inbound is the wire format clients post; everything else is stamped
// server-side.
type inbound struct {
	Body string `json:"body"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("chat read error", slog.Any("error", err))
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(raw, &in); err != nil || in.Body == "" {
			continue
		}
		c.hub.broadcast <- Message{
			ID:             uuid.NewString(),
			ConversationID: c.conversationID,
			SenderID:       c.senderID,
			SenderName:     c.senderName,
			Body:           in.Body,
			SentAt:         time.Now().UTC(),
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
