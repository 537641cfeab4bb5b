package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
)

// Report is an injured-stray sighting.
//
// Invariants:
//   - Guest reports (ReporterID == nil) require ReporterName and ReporterPhone
//   - Authenticated reports carry ReporterID and no guest contact fields
//   - Status moves only along ReportTransitions, and only via the status engine
type Report struct {
	ID uuid.UUID `json:"id"`
	// ReporterID is nil for guest reporters, who instead carry name+phone.
	ReporterID    *uuid.UUID `json:"reporter_id,omitempty"`
	ReporterName  string     `json:"reporter_name,omitempty"`
	ReporterPhone string     `json:"reporter_phone,omitempty"`
	ConditionTags []string   `json:"condition_tags"`
	Description   string     `json:"description"`
	MediaRefs     []string   `json:"media_refs,omitempty"`
	Address       string     `json:"address"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewReportInput carries the fields supplied by the report submission flow.
type NewReportInput struct {
	ReporterID    *uuid.UUID
	ReporterName  string
	ReporterPhone string
	ConditionTags []string
	Description   string
	MediaRefs     []string
	Address       string
	Latitude      float64
	Longitude     float64
}

// NewReport validates and builds a report in the initial pending status.
func NewReport(id uuid.UUID, in NewReportInput, now time.Time) (*Report, error) {
	if in.ReporterID == nil {
		if strings.TrimSpace(in.ReporterName) == "" || strings.TrimSpace(in.ReporterPhone) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "guest reports require a contact name and phone")
		}
	} else {
		// An authenticated reporter is reachable through their account.
		in.ReporterName = ""
		in.ReporterPhone = ""
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "report address is required")
	}
	if len(in.ConditionTags) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one condition tag is required")
	}

	return &Report{
		ID:            id,
		ReporterID:    in.ReporterID,
		ReporterName:  strings.TrimSpace(in.ReporterName),
		ReporterPhone: strings.TrimSpace(in.ReporterPhone),
		ConditionTags: in.ConditionTags,
		Description:   in.Description,
		MediaRefs:     in.MediaRefs,
		Address:       in.Address,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Status:        ReportPending,
		CreatedAt:     now,
	}, nil
}

// IsGuest reports whether the report was filed without an account.
func (r *Report) IsGuest() bool { return r.ReporterID == nil }

// CanTransitionTo checks edge legality against the report graph.
func (r *Report) CanTransitionTo(target Status) error {
	if ReportTransitions.IsTerminal(r.Status) {
		return dErrors.Newf(dErrors.CodeConflict, "report is already %s", r.Status)
	}
	if !ReportTransitions.CanTransition(r.Status, target) {
		return dErrors.Newf(dErrors.CodeConflict, "report cannot move from %s to %s", r.Status, target)
	}
	return nil
}

// ApplyTransition moves the report to the target status. Call
// CanTransitionTo first; the status engine runs both under the store's
// per-entity lock.
func (r *Report) ApplyTransition(target Status) {
	r.Status = target
}

// DisplayTitle is the short human label used when the report is shown as a
// shared case inside a conversation.
func (r *Report) DisplayTitle() string {
	if len(r.ConditionTags) > 0 {
		return r.ConditionTags[0] + " - " + r.Address
	}
	return r.Address
}
