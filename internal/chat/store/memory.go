package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/chat/models"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
)

// InMemory holds conversations and messages behind one mutex so the coupled
// writes (append message + refresh conversation snapshot, list + mark read)
// are single critical sections: a reader never sees one half of either pair.
type InMemory struct {
	mu            sync.RWMutex
	conversations map[uuid.UUID]models.Conversation
	byPair        map[string]uuid.UUID
	messages      map[uuid.UUID][]models.Message
	byClientKey   map[string]uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{
		conversations: make(map[uuid.UUID]models.Conversation),
		byPair:        make(map[string]uuid.UUID),
		messages:      make(map[uuid.UUID][]models.Message),
		byClientKey:   make(map[string]uuid.UUID),
	}
}

// CreateConversationIfAbsent inserts the conversation unless one already
// exists for the same unordered pair, in which case the existing record wins.
// The pair index is consulted and updated under the write lock, so two
// concurrent calls for the same pair settle on one conversation.
func (s *InMemory) CreateConversationIfAbsent(_ context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existingID, ok := s.byPair[conv.PairKey()]; ok {
		existing := s.conversations[existingID]
		return &existing, false, nil
	}
	s.conversations[conv.ID] = *conv
	s.byPair[conv.PairKey()] = conv.ID
	out := *conv
	return &out, true, nil
}

func (s *InMemory) FindConversation(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.conversations[id]; ok {
		out := c
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

// ListConversationsByParticipant returns every conversation containing the
// user, newest activity first.
func (s *InMemory) ListConversationsByParticipant(_ context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Conversation
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// AppendMessage appends the message and refreshes the parent conversation's
// snapshot and UpdatedAt in the same critical section. When the message
// carries a client key that was already used in this conversation, the
// original message is returned unchanged.
func (s *InMemory) AppendMessage(_ context.Context, msg *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[msg.ConversationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	if msg.ClientMessageID != "" {
		key := clientKey(msg.ConversationID, msg.ClientMessageID)
		if existingID, ok := s.byClientKey[key]; ok {
			for _, m := range s.messages[msg.ConversationID] {
				if m.ID == existingID {
					out := m
					return &out, nil
				}
			}
		}
		s.byClientKey[key] = msg.ID
	}

	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], *msg)
	conv.LastMessage = msg.Snapshot()
	conv.UpdatedAt = msg.CreatedAt
	s.conversations[msg.ConversationID] = conv

	out := *msg
	return &out, nil
}

// ListMessagesMarkingRead returns the conversation's messages in insertion
// order (non-decreasing CreatedAt) and, in the same critical section, marks
// every message not authored by the viewer as read. Returns how many
// messages flipped; a second identical call flips none.
func (s *InMemory) ListMessagesMarkingRead(_ context.Context, conversationID, viewerID uuid.UUID) ([]models.Message, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return nil, 0, sentinel.ErrNotFound
	}
	msgs := s.messages[conversationID]
	marked := 0
	for i := range msgs {
		if msgs[i].SenderID != viewerID && !msgs[i].IsRead {
			msgs[i].IsRead = true
			marked++
		}
	}
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, marked, nil
}

func clientKey(conversationID uuid.UUID, clientMessageID string) string {
	return conversationID.String() + ":" + clientMessageID
}
