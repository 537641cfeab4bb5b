package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
)

// Adoption is an application by a user to adopt a shelter's cat. The shelter
// that owns the referenced cat is the only shelter allowed to move the case;
// that authorization is computed by resolving Cat -> OwnerShelterID, not by
// role alone.
type Adoption struct {
	ID          uuid.UUID `json:"id"`
	ApplicantID uuid.UUID `json:"applicant_id"`
	CatID       uuid.UUID `json:"cat_id"`
	Occupation  string    `json:"occupation,omitempty"`
	Address     string    `json:"address"`
	Reason      string    `json:"reason"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAdoptionInput carries the applicant-profile fields plus the cat.
type NewAdoptionInput struct {
	ApplicantID uuid.UUID
	CatID       uuid.UUID
	Occupation  string
	Address     string
	Reason      string
}

// NewAdoption validates and builds an application in the initial pending
// status.
func NewAdoption(id uuid.UUID, in NewAdoptionInput, now time.Time) (*Adoption, error) {
	if in.ApplicantID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeValidation, "adoption requires an applicant")
	}
	if in.CatID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeValidation, "adoption requires a cat")
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "applicant address is required")
	}
	return &Adoption{
		ID:          id,
		ApplicantID: in.ApplicantID,
		CatID:       in.CatID,
		Occupation:  in.Occupation,
		Address:     in.Address,
		Reason:      in.Reason,
		Status:      AdoptionPending,
		CreatedAt:   now,
	}, nil
}

// CanTransitionTo checks edge legality against the adoption graph.
func (a *Adoption) CanTransitionTo(target Status) error {
	if AdoptionTransitions.IsTerminal(a.Status) {
		return dErrors.Newf(dErrors.CodeConflict, "adoption is already %s", a.Status)
	}
	if !AdoptionTransitions.CanTransition(a.Status, target) {
		return dErrors.Newf(dErrors.CodeConflict, "adoption cannot move from %s to %s", a.Status, target)
	}
	return nil
}

// ApplyTransition moves the adoption to the target status. Call
// CanTransitionTo first; the status engine runs both under the store's
// per-entity lock.
func (a *Adoption) ApplyTransition(target Status) {
	a.Status = target
}
