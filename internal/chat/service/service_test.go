package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	casesservice "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/service"
	casesstore "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/store"
	chatstore "github.com/piipapoy/pedulikucing-app-sub000/internal/chat/store"
	identity "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	identitystore "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/store"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

type ChatSuite struct {
	suite.Suite
	chat  *Service
	cases *casesservice.Service
	users identitystore.UserStore
	ctx   context.Context

	user    requestcontext.AuthPrincipal
	shelter requestcontext.AuthPrincipal
	admin   requestcontext.AuthPrincipal
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, new(ChatSuite))
}

func (s *ChatSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Now())
	s.users = identitystore.NewInMemory()

	caseStore := casesstore.NewInMemory()
	s.cases = casesservice.New(caseStore, caseStore, caseStore, caseStore)

	convStore := chatstore.NewInMemory()
	s.chat = New(convStore, convStore, s.users, s.cases)

	s.user = s.addUser("Dewi", identity.RoleUser)
	s.shelter = s.addUser("Rumah Kucing Bandung", identity.RoleShelter)
	s.admin = s.addUser("Admin Pusat", identity.RoleAdmin)
}

func (s *ChatSuite) addUser(name string, role identity.Role) requestcontext.AuthPrincipal {
	u := &identity.User{ID: uuid.New(), Name: name, Role: role, CreatedAt: time.Now()}
	s.Require().NoError(s.users.Save(s.ctx, u))
	return requestcontext.AuthPrincipal{UserID: u.ID, Role: string(role)}
}

func (s *ChatSuite) TestGetOrCreateConversationDedup() {
	first, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)

	// Repeat from the same side and from the opposite side.
	again, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)
	s.Equal(first.ID, again.ID)

	reversed, err := s.chat.GetOrCreateConversation(s.ctx, s.shelter, s.user.UserID)
	s.Require().NoError(err)
	s.Equal(first.ID, reversed.ID)
}

func (s *ChatSuite) TestGetOrCreateConversationSelf() {
	_, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.user.UserID)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ChatSuite) TestGetOrCreateConversationUnknownUser() {
	_, err := s.chat.GetOrCreateConversation(s.ctx, s.user, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// Scenario C: concurrent opens from both sides settle on one conversation id.
func (s *ChatSuite) TestConcurrentGetOrCreateSettlesOnOneID() {
	ids := make(chan uuid.UUID, 20)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor, other := s.user, s.shelter.UserID
			if i%2 == 1 {
				actor, other = s.shelter, s.user.UserID
			}
			conv, err := s.chat.GetOrCreateConversation(s.ctx, actor, other)
			if err == nil {
				ids <- conv.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[uuid.UUID]struct{})
	count := 0
	for id := range ids {
		seen[id] = struct{}{}
		count++
	}
	s.Equal(20, count)
	s.Len(seen, 1)
}

func (s *ChatSuite) TestPostMessageMembershipAndValidation() {
	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)

	_, err = s.chat.PostMessage(s.ctx, s.user, conv.ID, "   ", "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.chat.PostMessage(s.ctx, s.admin, conv.ID, "boleh ikut?", "")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.chat.PostMessage(s.ctx, s.user, uuid.New(), "halo", "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	msg, err := s.chat.PostMessage(s.ctx, s.user, conv.ID, "halo, kucingnya masih ada?", "")
	s.Require().NoError(err)
	s.Equal(s.user.UserID, msg.SenderID)
	s.False(msg.IsRead)
}

func (s *ChatSuite) TestMessageOrderingAndReadState() {
	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)

	contents := []string{"satu", "dua", "tiga", "empat"}
	for i, content := range contents {
		ctx := requestcontext.WithTime(context.Background(), time.Now().Add(time.Duration(i)*time.Millisecond))
		sender := s.user
		if i%2 == 1 {
			sender = s.shelter
		}
		_, err := s.chat.PostMessage(ctx, sender, conv.ID, content, "")
		s.Require().NoError(err)
	}

	msgs, err := s.chat.ListMessages(s.ctx, s.shelter, conv.ID)
	s.Require().NoError(err)
	s.Require().Len(msgs, 4)
	for i, m := range msgs {
		s.Equal(contents[i], m.Content)
	}
	// The shelter viewed: the user's messages are now read.
	for _, m := range msgs {
		s.Equal(m.SenderID == s.user.UserID, m.IsRead)
	}

	// Idempotent: a second view changes nothing.
	again, err := s.chat.ListMessages(s.ctx, s.shelter, conv.ID)
	s.Require().NoError(err)
	s.Equal(msgs, again)
}

func (s *ChatSuite) TestListMessagesNonParticipant() {
	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)
	_, err = s.chat.ListMessages(s.ctx, s.admin, conv.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ChatSuite) TestListConversationsEnrichment() {
	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)
	_, err = s.chat.PostMessage(s.ctx, s.shelter, conv.ID, "masih ada, silakan mampir", "")
	s.Require().NoError(err)

	views, err := s.chat.ListConversations(s.ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal(conv.ID, views[0].ConversationID)
	s.Equal("Rumah Kucing Bandung", views[0].Opponent.Name)
	s.Require().NotNil(views[0].LastMessage)
	s.Equal("masih ada, silakan mampir", views[0].LastMessage.Content)
}

func (s *ChatSuite) TestPostMessageClientKeyRetry() {
	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)

	first, err := s.chat.PostMessage(s.ctx, s.user, conv.ID, "jadi adopsi?", "key-1")
	s.Require().NoError(err)
	second, err := s.chat.PostMessage(s.ctx, s.user, conv.ID, "jadi adopsi?", "key-1")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	msgs, err := s.chat.ListMessages(s.ctx, s.shelter, conv.ID)
	s.Require().NoError(err)
	s.Len(msgs, 1)
}
