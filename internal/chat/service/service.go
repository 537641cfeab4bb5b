package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	casemodels "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	caseservice "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/service"
	chatmetrics "github.com/piipapoy/pedulikucing-app-sub000/internal/chat/metrics"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/chat/models"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/chat/pairlock"
	identity "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

type ConversationStore interface {
	CreateConversationIfAbsent(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error)
	FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversationsByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
}

type MessageStore interface {
	AppendMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	ListMessagesMarkingRead(ctx context.Context, conversationID, viewerID uuid.UUID) ([]models.Message, int, error)
}

// UserDirectory resolves participants to identity records.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// CaseDirectory answers the cross-slice questions the correlator asks; the
// cases service implements it.
type CaseDirectory interface {
	AdoptionsBetween(ctx context.Context, userX, userY uuid.UUID) ([]caseservice.AdoptionLink, error)
	ReportsByReporters(ctx context.Context, reporterIDs ...uuid.UUID) ([]casemodels.Report, error)
}

// Service owns conversation lifecycle, message flow, and the shared-case
// context view.
type Service struct {
	conversations ConversationStore
	messages      MessageStore
	users         UserDirectory
	cases         CaseDirectory
	locker        pairlock.Locker
	group         singleflight.Group
	logger        *slog.Logger
	metrics       *chatmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *chatmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPairLocker swaps the per-pair creation lock; defaults to in-process.
func WithPairLocker(l pairlock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

// New constructs a Service.
func New(conversations ConversationStore, messages MessageStore, users UserDirectory, cases CaseDirectory, opts ...Option) *Service {
	s := &Service{
		conversations: conversations,
		messages:      messages,
		users:         users,
		cases:         cases,
		locker:        pairlock.NewLocal(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreateConversation returns the single conversation between the actor
// and the other user, creating it when absent. Creation is layered:
// singleflight collapses concurrent local callers, the pair lock serializes
// across goroutines (or processes, with the distributed locker), and the
// store's pair uniqueness is the final arbiter. Whoever loses any of those
// races receives the winner's conversation.
func (s *Service) GetOrCreateConversation(ctx context.Context, actor requestcontext.AuthPrincipal, otherUserID uuid.UUID) (*models.Conversation, error) {
	if actor.UserID == otherUserID {
		return nil, dErrors.New(dErrors.CodeValidation, "cannot open a conversation with yourself")
	}
	for _, id := range []uuid.UUID{actor.UserID, otherUserID} {
		if _, err := s.users.FindByID(ctx, id); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
	}

	key := models.PairKey(actor.UserID, otherUserID)
	v, err, _ := s.group.Do(key, func() (any, error) {
		release, err := s.locker.Lock(ctx, key)
		if err != nil {
			return nil, err
		}
		defer release()

		conv := models.NewConversation(uuid.New(), actor.UserID, otherUserID, requestcontext.Now(ctx))
		stored, created, err := s.conversations.CreateConversationIfAbsent(ctx, conv)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create conversation")
		}
		if created {
			s.logger.InfoContext(ctx, "conversation created",
				"conversation_id", stored.ID,
				"participant_a", stored.ParticipantA,
				"participant_b", stored.ParticipantB,
			)
			if s.metrics != nil {
				s.metrics.ConversationsCreated.Inc()
			}
		}
		return stored, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Conversation), nil
}

// ListConversations returns the actor's conversations, newest activity first,
// each enriched with the opposite participant's public profile.
func (s *Service) ListConversations(ctx context.Context, actor requestcontext.AuthPrincipal) ([]models.ConversationView, error) {
	conversations, err := s.conversations.ListConversationsByParticipant(ctx, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list conversations")
	}

	views := make([]models.ConversationView, 0, len(conversations))
	for _, conv := range conversations {
		opponentID, _ := conv.Opponent(actor.UserID)
		view := models.ConversationView{
			ConversationID: conv.ID,
			LastMessage:    conv.LastMessage,
			UpdatedAt:      conv.UpdatedAt,
		}
		opponent, err := s.users.FindByID(ctx, opponentID)
		switch {
		case err == nil:
			view.Opponent = opponent.Public()
		case errors.Is(err, sentinel.ErrNotFound):
			// Deleted account; keep the conversation visible with a bare id.
			view.Opponent = identity.PublicProfile{ID: opponentID}
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve participant")
		}
		views = append(views, view)
	}
	return views, nil
}

// PostMessage appends a message to a conversation the actor belongs to. The
// store writes the message and the conversation snapshot as one atomic unit.
func (s *Service) PostMessage(ctx context.Context, actor requestcontext.AuthPrincipal, conversationID uuid.UUID, content, clientMessageID string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "message content must not be empty")
	}
	conv, err := s.loadConversationFor(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:              uuid.New(),
		ConversationID:  conv.ID,
		SenderID:        actor.UserID,
		ClientMessageID: clientMessageID,
		Content:         content,
		CreatedAt:       requestcontext.Now(ctx),
	}
	stored, err := s.messages.AppendMessage(ctx, msg)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "conversation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to post message")
	}
	if s.metrics != nil && stored.ID == msg.ID {
		s.metrics.MessagesPosted.Inc()
	}
	return stored, nil
}

// ListMessages returns the conversation's messages oldest first and, as a
// side effect of the actor viewing them, marks incoming messages as read.
func (s *Service) ListMessages(ctx context.Context, actor requestcontext.AuthPrincipal, conversationID uuid.UUID) ([]models.Message, error) {
	conv, err := s.loadConversationFor(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}
	messages, marked, err := s.messages.ListMessagesMarkingRead(ctx, conv.ID, actor.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "conversation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list messages")
	}
	if s.metrics != nil && marked > 0 {
		s.metrics.MessagesMarkedRead.Add(float64(marked))
	}
	return messages, nil
}

// loadConversationFor fetches the conversation and enforces membership.
// Membership failures are explicit 403s so clients can tell a bad id from a
// permissions problem.
func (s *Service) loadConversationFor(ctx context.Context, actor requestcontext.AuthPrincipal, conversationID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.conversations.FindConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "conversation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load conversation")
	}
	if !conv.HasParticipant(actor.UserID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not a participant of this conversation")
	}
	return conv, nil
}
