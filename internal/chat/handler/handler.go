package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/chat/models"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/platform/middleware"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/transport/http/shared"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

// Service is the chat surface the handler delegates to.
type Service interface {
	GetOrCreateConversation(ctx context.Context, actor requestcontext.AuthPrincipal, otherUserID uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, actor requestcontext.AuthPrincipal) ([]models.ConversationView, error)
	PostMessage(ctx context.Context, actor requestcontext.AuthPrincipal, conversationID uuid.UUID, content, clientMessageID string) (*models.Message, error)
	ListMessages(ctx context.Context, actor requestcontext.AuthPrincipal, conversationID uuid.UUID) ([]models.Message, error)
	SharedCases(ctx context.Context, actor requestcontext.AuthPrincipal, conversationID uuid.UUID) ([]models.SharedCase, error)
}

// Handler exposes the chat endpoints.
type Handler struct {
	chat      Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func New(chat Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{chat: chat, logger: logger, validator: validator}
}

// Register mounts the chat routes. Everything requires auth; there is no
// guest chat.
func (h *Handler) Register(r chi.Router) {
	r.Route("/chat/conversations", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Post("/", h.handleOpenConversation)
		r.Get("/", h.handleListConversations)
		r.Post("/{conversationID}/messages", h.handlePostMessage)
		r.Get("/{conversationID}/messages", h.handleListMessages)
		r.Get("/{conversationID}/context", h.handleConversationContext)
	})
}

type openConversationRequest struct {
	OtherUserID uuid.UUID `json:"other_user_id" validate:"required"`
}

func (h *Handler) handleOpenConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req openConversationRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	conv, err := h.chat.GetOrCreateConversation(ctx, requestcontext.Principal(ctx), req.OtherUserID)
	if err != nil {
		h.logError(ctx, "open conversation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, conv)
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := h.chat.ListConversations(ctx, requestcontext.Principal(ctx))
	if err != nil {
		h.logError(ctx, "list conversations failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"conversations": views})
}

type postMessageRequest struct {
	Content         string `json:"content" validate:"required"`
	ClientMessageID string `json:"client_message_id,omitempty" validate:"omitempty,max=128"`
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID, err := pathUUID(r, "conversationID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req postMessageRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	msg, err := h.chat.PostMessage(ctx, requestcontext.Principal(ctx), conversationID, req.Content, req.ClientMessageID)
	if err != nil {
		h.logError(ctx, "post message failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID, err := pathUUID(r, "conversationID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	messages, err := h.chat.ListMessages(ctx, requestcontext.Principal(ctx), conversationID)
	if err != nil {
		h.logError(ctx, "list messages failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *Handler) handleConversationContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID, err := pathUUID(r, "conversationID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	cases, err := h.chat.SharedCases(ctx, requestcontext.Principal(ctx), conversationID)
	if err != nil {
		h.logError(ctx, "conversation context failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", param)
	}
	return id, nil
}
