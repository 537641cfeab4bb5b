package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
)

// AdoptionLink pairs an adoption with its resolved cat so callers can show
// the cat's name and check shelter ownership without a second round trip.
type AdoptionLink struct {
	Adoption models.Adoption
	Cat      models.Cat
}

// AdoptionsBetween returns every adoption that links the two users in either
// direction: one is the applicant and the other owns the referenced cat.
// No status filter; a pending adoption is itself the reason the two parties
// are talking.
func (s *Service) AdoptionsBetween(ctx context.Context, userX, userY uuid.UUID) ([]AdoptionLink, error) {
	var out []AdoptionLink
	for _, pair := range [][2]uuid.UUID{{userX, userY}, {userY, userX}} {
		applicant, shelter := pair[0], pair[1]
		adoptions, err := s.adoptions.ListAdoptionsByApplicant(ctx, applicant)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list adoptions")
		}
		for _, adoption := range adoptions {
			cat, err := s.cats.FindCat(ctx, adoption.CatID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					// Dangling cat reference; skip rather than fail the
					// whole view.
					continue
				}
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve cat")
			}
			if cat.OwnerShelterID != shelter {
				continue
			}
			out = append(out, AdoptionLink{Adoption: adoption, Cat: *cat})
		}
	}
	return out, nil
}

// ReportsByReporters returns the reports created by any of the given users.
// Guest reports carry no reporter id and never match.
func (s *Service) ReportsByReporters(ctx context.Context, reporterIDs ...uuid.UUID) ([]models.Report, error) {
	var out []models.Report
	for _, reporterID := range reporterIDs {
		reports, err := s.reports.ListReportsByReporter(ctx, reporterID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reports")
		}
		out = append(out, reports...)
	}
	return out, nil
}
