package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	identity "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

// UpdateStatus is the single entry point for moving a case along its status
// graph. It validates actor authorization first, then edge legality, and
// commits the write under the store's per-entity lock so concurrent
// transitions on the same case serialize instead of racing.
//
// There is no audit trail of transitions beyond the structured log line; a
// known gap carried over from the original design.
func (s *Service) UpdateStatus(ctx context.Context, actor requestcontext.AuthPrincipal, entity models.EntityType, id uuid.UUID, newStatus models.Status) (models.Status, error) {
	graph, ok := models.GraphFor(entity)
	if !ok {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown entity type %q", entity)
	}
	if !graph.Known(newStatus) {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q for %s", newStatus, entity)
	}

	var committed models.Status
	var err error
	switch entity {
	case models.EntityReport:
		committed, err = s.transitionReport(ctx, actor, id, newStatus)
	case models.EntityAdoption:
		committed, err = s.transitionAdoption(ctx, actor, id, newStatus)
	}
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "case status updated",
		"entity", string(entity),
		"case_id", id,
		"status", string(committed),
		"actor_id", actor.UserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(entity), string(committed)).Inc()
	}
	return committed, nil
}

// transitionReport gates on role: shelters and admins handle reports.
func (s *Service) transitionReport(ctx context.Context, actor requestcontext.AuthPrincipal, id uuid.UUID, newStatus models.Status) (models.Status, error) {
	if !identity.Role(actor.Role).CanHandleReports() {
		return "", dErrors.New(dErrors.CodeForbidden, "only shelters and admins can update report status")
	}

	report, err := s.reports.ExecuteReport(ctx, id,
		func(r *models.Report) error { return r.CanTransitionTo(newStatus) },
		func(r *models.Report) { r.ApplyTransition(newStatus) },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return "", err
	}
	return report.Status, nil
}

// transitionAdoption gates on ownership: the shelter that owns the referenced
// cat, resolved through Cat -> OwnerShelterID, not role alone. Admins retain
// oversight.
func (s *Service) transitionAdoption(ctx context.Context, actor requestcontext.AuthPrincipal, id uuid.UUID, newStatus models.Status) (models.Status, error) {
	adoption, err := s.adoptions.FindAdoption(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "adoption not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load adoption")
	}

	if identity.Role(actor.Role) != identity.RoleAdmin {
		cat, err := s.cats.FindCat(ctx, adoption.CatID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return "", dErrors.New(dErrors.CodeNotFound, "cat not found")
			}
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve cat ownership")
		}
		if identity.Role(actor.Role) != identity.RoleShelter || cat.OwnerShelterID != actor.UserID {
			return "", dErrors.New(dErrors.CodeForbidden, "only the shelter that owns this cat can update the adoption")
		}
	}

	adoption, err = s.adoptions.ExecuteAdoption(ctx, id,
		func(a *models.Adoption) error { return a.CanTransitionTo(newStatus) },
		func(a *models.Adoption) { a.ApplyTransition(newStatus) },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "adoption not found")
		}
		return "", err
	}
	return adoption.Status, nil
}
