package models

import (
	"github.com/google/uuid"

	cases "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
)

// CaseType tags the variant of a shared case descriptor.
type CaseType string

const (
	CaseTypeAdoption CaseType = "adoption"
	CaseTypeReport   CaseType = "report"
)

// SharedCase is the uniform descriptor for any case surfaced inside a
// conversation, regardless of which workflow it came from.
type SharedCase struct {
	ID          uuid.UUID `json:"id"`
	Type        CaseType  `json:"type"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
}

// ProjectSharedCase is the single projection every case variant goes
// through; adoption and report descriptors must not diverge in shape.
func ProjectSharedCase(caseType CaseType, id uuid.UUID, title string, status cases.Status) SharedCase {
	return SharedCase{
		ID:          id,
		Type:        caseType,
		Title:       title,
		Status:      string(status),
		StatusLabel: status.Label(),
	}
}
