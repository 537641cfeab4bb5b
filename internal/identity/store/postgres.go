package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
)

// Postgres persists the user directory.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, avatar_url, phone, role, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    avatar_url = EXCLUDED.avatar_url,
		    phone = EXCLUDED.phone,
		    role = EXCLUDED.role,
		    verified = EXCLUDED.verified
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Name, user.AvatarURL, user.Phone, string(user.Role), user.Verified, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, name, avatar_url, phone, role, verified, created_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	var role string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.AvatarURL, &u.Phone, &role, &u.Verified, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}
