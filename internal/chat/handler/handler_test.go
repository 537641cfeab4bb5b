package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	casesservice "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/service"
	casesstore "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/store"
	chatservice "github.com/piipapoy/pedulikucing-app-sub000/internal/chat/service"
	chatstore "github.com/piipapoy/pedulikucing-app-sub000/internal/chat/store"
	identity "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	identitystore "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/store"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/identity/token"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	tokens *token.Service
	users  identitystore.UserStore

	userID    uuid.UUID
	shelterID uuid.UUID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.tokens = token.NewService("test-key", "pedulikucing")
	s.users = identitystore.NewInMemory()

	caseStore := casesstore.NewInMemory()
	caseSvc := casesservice.New(caseStore, caseStore, caseStore, caseStore)
	convStore := chatstore.NewInMemory()
	chatSvc := chatservice.New(convStore, convStore, s.users, caseSvc)

	s.userID = s.addUser("Dewi", identity.RoleUser)
	s.shelterID = s.addUser("Rumah Kucing", identity.RoleShelter)

	r := chi.NewRouter()
	New(chatSvc, logger, s.tokens).Register(r)
	s.router = r
}

func (s *HandlerSuite) addUser(name string, role identity.Role) uuid.UUID {
	u := &identity.User{ID: uuid.New(), Name: name, Role: role, CreatedAt: time.Now()}
	s.Require().NoError(s.users.Save(context.Background(), u))
	return u.ID
}

func (s *HandlerSuite) bearer(userID uuid.UUID, role identity.Role) string {
	t, err := s.tokens.GenerateAccessToken(userID, role, time.Hour)
	s.Require().NoError(err)
	return "Bearer " + t
}

func (s *HandlerSuite) do(method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestRequiresAuth() {
	rec := s.do(http.MethodGet, "/chat/conversations", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestConversationFlow() {
	userAuth := s.bearer(s.userID, identity.RoleUser)
	shelterAuth := s.bearer(s.shelterID, identity.RoleShelter)

	rec := s.do(http.MethodPost, "/chat/conversations", userAuth,
		map[string]string{"other_user_id": s.shelterID.String()})
	s.Require().Equal(http.StatusOK, rec.Code)
	var conv struct {
		ID uuid.UUID `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &conv))

	// Same pair from the other side lands on the same conversation.
	rec = s.do(http.MethodPost, "/chat/conversations", shelterAuth,
		map[string]string{"other_user_id": s.userID.String()})
	s.Require().Equal(http.StatusOK, rec.Code)
	var conv2 struct {
		ID uuid.UUID `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &conv2))
	s.Equal(conv.ID, conv2.ID)

	msgPath := fmt.Sprintf("/chat/conversations/%s/messages", conv.ID)
	rec = s.do(http.MethodPost, msgPath, userAuth,
		map[string]string{"content": "halo, kucingnya masih ada?"})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, msgPath, shelterAuth, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var listing struct {
		Messages []struct {
			Content string `json:"content"`
			IsRead  bool   `json:"is_read"`
		} `json:"messages"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &listing))
	s.Require().Len(listing.Messages, 1)
	s.True(listing.Messages[0].IsRead)

	rec = s.do(http.MethodGet, "/chat/conversations", userAuth, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/chat/conversations/%s/context", conv.ID), userAuth, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
}

func (s *HandlerSuite) TestSelfConversationRejected() {
	rec := s.do(http.MethodPost, "/chat/conversations", s.bearer(s.userID, identity.RoleUser),
		map[string]string{"other_user_id": s.userID.String()})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlerSuite) TestInvalidConversationID() {
	rec := s.do(http.MethodGet, "/chat/conversations/not-a-uuid/messages",
		s.bearer(s.userID, identity.RoleUser), nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestNonParticipantForbidden() {
	userAuth := s.bearer(s.userID, identity.RoleUser)
	rec := s.do(http.MethodPost, "/chat/conversations", userAuth,
		map[string]string{"other_user_id": s.shelterID.String()})
	s.Require().Equal(http.StatusOK, rec.Code)
	var conv struct {
		ID uuid.UUID `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &conv))

	strangerID := s.addUser("Orang Asing", identity.RoleUser)
	rec = s.do(http.MethodGet, fmt.Sprintf("/chat/conversations/%s/messages", conv.ID),
		s.bearer(strangerID, identity.RoleUser), nil)
	s.Equal(http.StatusForbidden, rec.Code)
}
