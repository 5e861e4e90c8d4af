package chat

import "time"

// ConversationStatus tracks whether support is still engaged.
type ConversationStatus string

const (
	ConversationOpen   ConversationStatus = "OPEN"
	ConversationClosed ConversationStatus = "CLOSED"
)

// Conversation is one customer support thread.
type Conversation struct {
	ID           int64              `json:"id"`
	CustomerID   int64              `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	Status       ConversationStatus `json:"status"`
	LastMessage  string             `json:"last_message"`
	UpdatedAt    time.Time          `json:"updated_at"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Message is one chat line within a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
}
