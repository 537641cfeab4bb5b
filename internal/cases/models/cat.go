package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
)

// Cat is a shelter-owned animal listed for adoption. Ownership of the cat
// determines which shelter may transition adoption cases that reference it.
type Cat struct {
	ID             uuid.UUID `json:"id"`
	OwnerShelterID uuid.UUID `json:"owner_shelter_id"`
	Name           string    `json:"name"`
	Breed          string    `json:"breed,omitempty"`
	AgeMonths      int       `json:"age_months,omitempty"`
	Description    string    `json:"description,omitempty"`
	MediaRefs      []string  `json:"media_refs,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewCat validates and builds a shelter listing.
func NewCat(id uuid.UUID, ownerShelterID uuid.UUID, name string, now time.Time) (*Cat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "cat name cannot be empty")
	}
	if ownerShelterID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "cat must belong to a shelter")
	}
	return &Cat{ID: id, OwnerShelterID: ownerShelterID, Name: name, CreatedAt: now}, nil
}
