package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	identity "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
)

// Conversation is a deduplicated two-party channel.
//
// Invariants:
//   - At most one conversation exists per unordered participant pair
//   - ParticipantA always holds the lexicographically smaller UUID, so the
//     pair is stored canonically and lookups are symmetric
//   - LastMessage/UpdatedAt always reflect the newest message; the two are
//     written in the same atomic unit as the message itself
type Conversation struct {
	ID           uuid.UUID    `json:"id"`
	ParticipantA uuid.UUID    `json:"participant_a"`
	ParticipantB uuid.UUID    `json:"participant_b"`
	LastMessage  *LastMessage `json:"last_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// LastMessage is the denormalized snapshot shown in conversation lists.
type LastMessage struct {
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CanonicalPair orders two participant IDs so (A,B) and (B,A) map to the
// same stored pair.
func CanonicalPair(x, y uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(x.String(), y.String()) > 0 {
		return y, x
	}
	return x, y
}

// PairKey is the symmetric lookup key for a participant pair.
func PairKey(x, y uuid.UUID) string {
	lo, hi := CanonicalPair(x, y)
	return lo.String() + ":" + hi.String()
}

// NewConversation builds a conversation with canonically ordered
// participants.
func NewConversation(id uuid.UUID, x, y uuid.UUID, now time.Time) *Conversation {
	lo, hi := CanonicalPair(x, y)
	return &Conversation{
		ID:           id,
		ParticipantA: lo,
		ParticipantB: hi,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasParticipant reports whether the user belongs to the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Opponent resolves the other participant. ok is false when the viewer is
// not part of the conversation.
func (c *Conversation) Opponent(viewerID uuid.UUID) (uuid.UUID, bool) {
	switch viewerID {
	case c.ParticipantA:
		return c.ParticipantB, true
	case c.ParticipantB:
		return c.ParticipantA, true
	}
	return uuid.Nil, false
}

// PairKey returns the conversation's symmetric pair key.
func (c *Conversation) PairKey() string {
	return PairKey(c.ParticipantA, c.ParticipantB)
}

// ConversationView is a conversation enriched for one viewer: the opposite
// participant's public profile plus the newest message snapshot.
type ConversationView struct {
	ConversationID uuid.UUID              `json:"conversation_id"`
	Opponent       identity.PublicProfile `json:"opponent"`
	LastMessage    *LastMessage           `json:"last_message,omitempty"`
	UpdatedAt      time.Time              `json:"updated_at"`
}
