package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palengke-app/palengke/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for conversations and
// message history.
type Repository interface {
	ListConversations(ctx context.Context) ([]Conversation, error)
	GetConversation(ctx context.Context, id int64) (*Conversation, error)
	SetConversationStatus(ctx context.Context, id int64, status ConversationStatus) error
	Messages(ctx context.Context, conversationID int64, limit int) ([]Message, error)
	SaveMessage(ctx context.Context, m Message) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListConversations(ctx context.Context) ([]Conversation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, customer_id, customer_name, status, last_message, updated_at, created_at
		 FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.CustomerID, &c.CustomerName, &c.Status, &c.LastMessage, &c.UpdatedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var c Conversation
	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_id, customer_name, status, last_message, updated_at, created_at
		 FROM conversations WHERE id = $1`, id,
	).Scan(&c.ID, &c.CustomerID, &c.CustomerName, &c.Status, &c.LastMessage, &c.UpdatedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) SetConversationStatus(ctx context.Context, id int64, status ConversationStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE conversations SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set conversation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Messages(ctx context.Context, conversationID int64, limit int) ([]Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, conversation_id, sender_id, sender_name, body, sent_at
		 FROM chat_messages WHERE conversation_id = $1
		 ORDER BY sent_at DESC LIMIT $2`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderName, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	// history is fetched newest-first, returned oldest-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, rows.Err()
}

func (r *repository) SaveMessage(ctx context.Context, m Message) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO chat_messages (id, conversation_id, sender_id, sender_name, body, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.ConversationID, m.SenderID, m.SenderName, m.Body, m.SentAt)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE conversations SET last_message = $1, updated_at = $2 WHERE id = $3`,
		m.Body, m.SentAt, m.ConversationID)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}
