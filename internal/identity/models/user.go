package models

import (
	"time"

	"github.com/google/uuid"
)

// Role gates who may drive case workflows. Shelters handle reports and own
// adoptable cats; admins oversee everything.
type Role string

const (
	RoleUser    Role = "USER"
	RoleShelter Role = "SHELTER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleShelter, RoleAdmin:
		return true
	}
	return false
}

// CanHandleReports reports whether the role may transition report cases.
func (r Role) CanHandleReports() bool {
	return r == RoleShelter || r == RoleAdmin
}

// User is a directory entry. Credential issuance and verification live with
// the external identity collaborator; this record only carries what the core
// needs to enrich conversations and gate transitions.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	// Verified applies to shelters only.
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicProfile is the slice of a user safe to show the other side of a
// conversation.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

// Public projects the user into its conversation-facing shape.
func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
