package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
)

// Campaign is a shelter fundraising drive.
//
// Invariants:
//   - CurrentAmount is monotonically non-decreasing and only ever increased
//     by committed donations
//   - Donations are accepted only while approved, open, and before the
//     deadline
//   - IsClosed is terminal and independent of whether the target was reached
type Campaign struct {
	ID             uuid.UUID `json:"id"`
	OwnerShelterID uuid.UUID `json:"owner_shelter_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	// Amounts are in the smallest currency unit.
	TargetAmount  int64     `json:"target_amount"`
	CurrentAmount int64     `json:"current_amount"`
	Deadline      time.Time `json:"deadline"`
	IsApproved    bool      `json:"is_approved"`
	IsClosed      bool      `json:"is_closed"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewCampaignInput carries the shelter-authored fields.
type NewCampaignInput struct {
	OwnerShelterID uuid.UUID
	Title          string
	Description    string
	TargetAmount   int64
	Deadline       time.Time
}

// NewCampaign validates and builds an unapproved campaign. An admin approval
// makes it visible to donors.
func NewCampaign(id uuid.UUID, in NewCampaignInput, now time.Time) (*Campaign, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "campaign title is required")
	}
	if in.TargetAmount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "campaign target must be positive")
	}
	if !in.Deadline.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "campaign deadline must be in the future")
	}
	return &Campaign{
		ID:             id,
		OwnerShelterID: in.OwnerShelterID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		TargetAmount:   in.TargetAmount,
		Deadline:       in.Deadline,
		IsApproved:     false,
		IsClosed:       false,
		CreatedAt:      now,
	}, nil
}

// CanApprove checks that approval is still meaningful.
func (c *Campaign) CanApprove() error {
	if c.IsClosed {
		return dErrors.New(dErrors.CodeConflict, "campaign is closed")
	}
	if c.IsApproved {
		return dErrors.New(dErrors.CodeConflict, "campaign is already approved")
	}
	return nil
}

// ApplyApproval marks the campaign visible to donors.
func (c *Campaign) ApplyApproval() { c.IsApproved = true }

// CanClose checks the campaign is not already closed.
func (c *Campaign) CanClose() error {
	if c.IsClosed {
		return dErrors.New(dErrors.CodeConflict, "campaign is already closed")
	}
	return nil
}

// ApplyClose ends the campaign. Closing is terminal.
func (c *Campaign) ApplyClose() { c.IsClosed = true }

// CanAcceptDonation checks that the campaign may take money right now.
func (c *Campaign) CanAcceptDonation(now time.Time) error {
	if !c.IsApproved {
		return dErrors.New(dErrors.CodeConflict, "campaign is not approved yet")
	}
	if c.IsClosed {
		return dErrors.New(dErrors.CodeConflict, "campaign is closed")
	}
	if now.After(c.Deadline) {
		return dErrors.New(dErrors.CodeConflict, "campaign deadline has passed")
	}
	return nil
}

// ApplyDonation commits a donation amount. The caller runs this inside the
// same atomic unit that appends the Donation record.
func (c *Campaign) ApplyDonation(amount int64) {
	c.CurrentAmount += amount
}

// Donation is an append-only record; it is never mutated after commit.
type Donation struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	DonorID    uuid.UUID `json:"donor_id"`
	Amount     int64     `json:"amount"`
	Anonymous  bool      `json:"anonymous"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDonation validates and builds a donation record.
func NewDonation(id uuid.UUID, campaignID, donorID uuid.UUID, amount int64, anonymous bool, now time.Time) (*Donation, error) {
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "donation amount must be positive")
	}
	if donorID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeValidation, "donation requires a donor")
	}
	return &Donation{
		ID:         id,
		CampaignID: campaignID,
		DonorID:    donorID,
		Amount:     amount,
		Anonymous:  anonymous,
		CreatedAt:  now,
	}, nil
}
