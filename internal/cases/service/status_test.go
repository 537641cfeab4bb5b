package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/cases/store"
	identity "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

type StatusSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context

	shelter requestcontext.AuthPrincipal
	admin   requestcontext.AuthPrincipal
	user    requestcontext.AuthPrincipal
}

func TestStatusSuite(t *testing.T) {
	suite.Run(t, new(StatusSuite))
}

func (s *StatusSuite) SetupTest() {
	mem := store.NewInMemory()
	s.svc = New(mem, mem, mem, mem)
	s.ctx = requestcontext.WithTime(context.Background(), time.Now())

	s.shelter = requestcontext.AuthPrincipal{UserID: uuid.New(), Role: string(identity.RoleShelter)}
	s.admin = requestcontext.AuthPrincipal{UserID: uuid.New(), Role: string(identity.RoleAdmin)}
	s.user = requestcontext.AuthPrincipal{UserID: uuid.New(), Role: string(identity.RoleUser)}
}

func (s *StatusSuite) submitReport() *models.Report {
	report, err := s.svc.SubmitReport(s.ctx, models.NewReportInput{
		ReporterName:  "Rina",
		ReporterPhone: "+628222",
		ConditionTags: []string{"Patah Tulang"},
		Address:       "Dago Atas",
	})
	s.Require().NoError(err)
	return report
}

func (s *StatusSuite) submitAdoption() (*models.Adoption, *models.Cat) {
	cat, err := s.svc.AddCat(s.ctx, s.shelter, "Oyen", "Kampung", "Ramah", 8, nil)
	s.Require().NoError(err)
	adoption, err := s.svc.SubmitAdoption(s.ctx, s.user, models.NewAdoptionInput{
		CatID:   cat.ID,
		Address: "Antapani",
		Reason:  "Ingin memelihara",
	})
	s.Require().NoError(err)
	return adoption, cat
}

func (s *StatusSuite) TestReportTransitionRoleGate() {
	report := s.submitReport()

	_, err := s.svc.UpdateStatus(s.ctx, s.user, models.EntityReport, report.ID, models.ReportVerified)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	status, err := s.svc.UpdateStatus(s.ctx, s.shelter, models.EntityReport, report.ID, models.ReportVerified)
	s.Require().NoError(err)
	s.Equal(models.ReportVerified, status)
}

func (s *StatusSuite) TestReportIllegalEdge() {
	report := s.submitReport()
	_, err := s.svc.UpdateStatus(s.ctx, s.admin, models.EntityReport, report.ID, models.ReportRescued)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *StatusSuite) TestReportTerminalRejected() {
	report := s.submitReport()
	_, err := s.svc.UpdateStatus(s.ctx, s.admin, models.EntityReport, report.ID, models.ReportRejected)
	s.Require().NoError(err)

	_, err = s.svc.UpdateStatus(s.ctx, s.admin, models.EntityReport, report.ID, models.ReportVerified)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *StatusSuite) TestAdoptionOwnershipGate() {
	adoption, _ := s.submitAdoption()

	// A different shelter does not own the cat.
	otherShelter := requestcontext.AuthPrincipal{UserID: uuid.New(), Role: string(identity.RoleShelter)}
	_, err := s.svc.UpdateStatus(s.ctx, otherShelter, models.EntityAdoption, adoption.ID, models.AdoptionInterview)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	// The applicant cannot move their own case.
	_, err = s.svc.UpdateStatus(s.ctx, s.user, models.EntityAdoption, adoption.ID, models.AdoptionInterview)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	status, err := s.svc.UpdateStatus(s.ctx, s.shelter, models.EntityAdoption, adoption.ID, models.AdoptionInterview)
	s.Require().NoError(err)
	s.Equal(models.AdoptionInterview, status)
}

func (s *StatusSuite) TestAdoptionAdminOverride() {
	adoption, _ := s.submitAdoption()
	status, err := s.svc.UpdateStatus(s.ctx, s.admin, models.EntityAdoption, adoption.ID, models.AdoptionCancelled)
	s.Require().NoError(err)
	s.Equal(models.AdoptionCancelled, status)
}

func (s *StatusSuite) TestUnknownEntityAndStatus() {
	_, err := s.svc.UpdateStatus(s.ctx, s.admin, models.EntityType("campaign"), uuid.New(), models.ReportVerified)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	report := s.submitReport()
	_, err = s.svc.UpdateStatus(s.ctx, s.admin, models.EntityReport, report.ID, models.Status("LOST"))
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	// A status valid for the other entity is still unknown here.
	_, err = s.svc.UpdateStatus(s.ctx, s.admin, models.EntityReport, report.ID, models.AdoptionInterview)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *StatusSuite) TestUpdateStatusNotFound() {
	_, err := s.svc.UpdateStatus(s.ctx, s.admin, models.EntityReport, uuid.New(), models.ReportVerified)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *StatusSuite) TestCampaignLifecycle() {
	campaign, err := s.svc.SubmitCampaign(s.ctx, s.shelter, models.NewCampaignInput{
		Title:        "Sterilisasi",
		TargetAmount: 2_000_000,
		Deadline:     requestcontext.Now(s.ctx).Add(24 * time.Hour),
	})
	s.Require().NoError(err)
	s.False(campaign.IsApproved)

	// Donating before approval is a conflict.
	_, err = s.svc.Donate(s.ctx, s.user, campaign.ID, 100_000, false)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	// Only admins approve.
	_, err = s.svc.ApproveCampaign(s.ctx, s.shelter, campaign.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	campaign, err = s.svc.ApproveCampaign(s.ctx, s.admin, campaign.ID)
	s.Require().NoError(err)
	s.True(campaign.IsApproved)

	donation, err := s.svc.Donate(s.ctx, s.user, campaign.ID, 100_000, true)
	s.Require().NoError(err)
	s.Equal(int64(100_000), donation.Amount)

	// Only the owner or an admin closes.
	_, err = s.svc.CloseCampaign(s.ctx, s.user, campaign.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	campaign, err = s.svc.CloseCampaign(s.ctx, s.shelter, campaign.ID)
	s.Require().NoError(err)
	s.True(campaign.IsClosed)

	_, err = s.svc.Donate(s.ctx, s.user, campaign.ID, 50_000, false)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
