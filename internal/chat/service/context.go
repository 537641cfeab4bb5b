package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	casemodels "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	caseservice "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/service"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/chat/models"
	identity "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

// SharedCases assembles the case context for a conversation: every case that
// links the two participants, projected into one uniform descriptor list.
//
// Inclusion rules:
//   - adoptions where one participant applied for a cat the other's shelter
//     owns, any status
//   - reports authored by a participant, when the opposite participant's role
//     handles reports; unverified reports are withheld until triage
//
// Ordering: adoptions first, then reports, each newest first. The view is
// computed per request; staleness is bounded by the client's polling
// cadence, not a cache.
func (s *Service) SharedCases(ctx context.Context, actor requestcontext.AuthPrincipal, conversationID uuid.UUID) ([]models.SharedCase, error) {
	start := time.Now()
	conv, err := s.loadConversationFor(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	var adoptions []caseservice.AdoptionLink
	var reports []casemodels.Report

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		adoptions, err = s.cases.AdoptionsBetween(gctx, conv.ParticipantA, conv.ParticipantB)
		return err
	})
	g.Go(func() error {
		reporterIDs, err := s.eligibleReporters(gctx, conv.ParticipantA, conv.ParticipantB)
		if err != nil || len(reporterIDs) == 0 {
			return err
		}
		reports, err = s.cases.ReportsByReporters(gctx, reporterIDs...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(adoptions, func(i, j int) bool {
		return adoptions[i].Adoption.CreatedAt.After(adoptions[j].Adoption.CreatedAt)
	})
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	out := make([]models.SharedCase, 0, len(adoptions)+len(reports))
	for _, link := range adoptions {
		out = append(out, models.ProjectSharedCase(
			models.CaseTypeAdoption, link.Adoption.ID, link.Cat.Name, link.Adoption.Status))
	}
	for _, report := range reports {
		if report.Status == casemodels.ReportPending {
			continue
		}
		out = append(out, models.ProjectSharedCase(
			models.CaseTypeReport, report.ID, report.DisplayTitle(), report.Status))
	}

	if s.metrics != nil {
		s.metrics.SharedCasesDuration.Observe(time.Since(start).Seconds())
	}
	return out, nil
}

// eligibleReporters returns the participants whose reports belong in the
// shared view: a participant's reports count only when the opposite
// participant's role handles reports. A deleted account contributes nothing.
func (s *Service) eligibleReporters(ctx context.Context, participantA, participantB uuid.UUID) ([]uuid.UUID, error) {
	roleA, err := s.resolveRole(ctx, participantA)
	if err != nil {
		return nil, err
	}
	roleB, err := s.resolveRole(ctx, participantB)
	if err != nil {
		return nil, err
	}

	var out []uuid.UUID
	if roleB.CanHandleReports() {
		out = append(out, participantA)
	}
	if roleA.CanHandleReports() {
		out = append(out, participantB)
	}
	return out, nil
}

func (s *Service) resolveRole(ctx context.Context, userID uuid.UUID) (identity.Role, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve participant role")
	}
	return user.Role, nil
}
