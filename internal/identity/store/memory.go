package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
)

// InMemory keeps the user directory lightweight and testable. It intentionally
// favors clarity over performance.
type InMemory struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[uuid.UUID]models.User)}
}

func (s *InMemory) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		u := user
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}
