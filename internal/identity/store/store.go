package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
)

// UserStore is the read/write surface of the user directory.
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
