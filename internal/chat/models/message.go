package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is an append-only conversation entry. Order is defined by store
// insertion keyed on CreatedAt; no logical clock beyond that.
//
// IsRead flips true only for messages not authored by the reader, as a side
// effect of that reader listing the conversation.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	// ClientMessageID makes posting retry-idempotent: a resend with the same
	// key returns the original message instead of appending a duplicate.
	ClientMessageID string    `json:"client_message_id,omitempty"`
	Content         string    `json:"content"`
	IsRead          bool      `json:"is_read"`
	CreatedAt       time.Time `json:"created_at"`
}

// Snapshot projects the message into the conversation's denormalized
// last-message field.
func (m *Message) Snapshot() *LastMessage {
	return &LastMessage{SenderID: m.SenderID, Content: m.Content, CreatedAt: m.CreatedAt}
}
