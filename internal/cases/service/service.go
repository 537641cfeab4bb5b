package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	casemetrics "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/metrics"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	identity "github.com/piipapoy/pedulikucing-app-sub000/internal/identity/models"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

type ReportStore interface {
	CreateReport(ctx context.Context, report *models.Report) error
	FindReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListReportsByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error)
	ExecuteReport(ctx context.Context, id uuid.UUID, validate func(*models.Report) error, mutate func(*models.Report)) (*models.Report, error)
}

type AdoptionStore interface {
	CreateAdoption(ctx context.Context, adoption *models.Adoption) error
	FindAdoption(ctx context.Context, id uuid.UUID) (*models.Adoption, error)
	ListAdoptionsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]models.Adoption, error)
	ExecuteAdoption(ctx context.Context, id uuid.UUID, validate func(*models.Adoption) error, mutate func(*models.Adoption)) (*models.Adoption, error)
}

type CatStore interface {
	SaveCat(ctx context.Context, cat *models.Cat) error
	FindCat(ctx context.Context, id uuid.UUID) (*models.Cat, error)
}

type CampaignStore interface {
	CreateCampaign(ctx context.Context, campaign *models.Campaign) error
	FindCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	ExecuteCampaign(ctx context.Context, id uuid.UUID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error)
	RecordDonation(ctx context.Context, donation *models.Donation, validate func(*models.Campaign) error) (*models.Campaign, error)
	ListDonationsByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.Donation, error)
}

// Service orchestrates case submission and the status state machine engine.
type Service struct {
	reports   ReportStore
	adoptions AdoptionStore
	cats      CatStore
	campaigns CampaignStore
	logger    *slog.Logger
	metrics   *casemetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *casemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(reports ReportStore, adoptions AdoptionStore, cats CatStore, campaigns CampaignStore, opts ...Option) *Service {
	s := &Service{
		reports:   reports,
		adoptions: adoptions,
		cats:      cats,
		campaigns: campaigns,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitReport records a stray sighting. Guests supply contact details in the
// input; authenticated reporters are identified by ReporterID.
func (s *Service) SubmitReport(ctx context.Context, in models.NewReportInput) (*models.Report, error) {
	report, err := models.NewReport(uuid.New(), in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create report")
	}
	if s.metrics != nil {
		s.metrics.ReportsSubmitted.Inc()
	}
	return report, nil
}

// SubmitAdoption opens an adoption application for the acting user.
func (s *Service) SubmitAdoption(ctx context.Context, actor requestcontext.AuthPrincipal, in models.NewAdoptionInput) (*models.Adoption, error) {
	in.ApplicantID = actor.UserID
	if _, err := s.cats.FindCat(ctx, in.CatID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "cat not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cat")
	}
	adoption, err := models.NewAdoption(uuid.New(), in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.adoptions.CreateAdoption(ctx, adoption); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create adoption")
	}
	if s.metrics != nil {
		s.metrics.AdoptionsOpened.Inc()
	}
	return adoption, nil
}

// AddCat lists a cat under the acting shelter.
func (s *Service) AddCat(ctx context.Context, actor requestcontext.AuthPrincipal, name, breed, description string, ageMonths int, mediaRefs []string) (*models.Cat, error) {
	if identity.Role(actor.Role) != identity.RoleShelter {
		return nil, dErrors.New(dErrors.CodeForbidden, "only shelters can list cats")
	}
	cat, err := models.NewCat(uuid.New(), actor.UserID, name, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	cat.Breed = breed
	cat.Description = description
	cat.AgeMonths = ageMonths
	cat.MediaRefs = mediaRefs
	if err := s.cats.SaveCat(ctx, cat); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save cat")
	}
	return cat, nil
}

// SubmitCampaign creates an unapproved fundraising campaign owned by the
// acting shelter.
func (s *Service) SubmitCampaign(ctx context.Context, actor requestcontext.AuthPrincipal, in models.NewCampaignInput) (*models.Campaign, error) {
	if identity.Role(actor.Role) != identity.RoleShelter {
		return nil, dErrors.New(dErrors.CodeForbidden, "only shelters can open campaigns")
	}
	in.OwnerShelterID = actor.UserID
	campaign, err := models.NewCampaign(uuid.New(), in, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.campaigns.CreateCampaign(ctx, campaign); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create campaign")
	}
	if s.metrics != nil {
		s.metrics.CampaignsCreated.Inc()
	}
	return campaign, nil
}

// ApproveCampaign flips a campaign visible to donors. Admin only.
func (s *Service) ApproveCampaign(ctx context.Context, actor requestcontext.AuthPrincipal, campaignID uuid.UUID) (*models.Campaign, error) {
	if identity.Role(actor.Role) != identity.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can approve campaigns")
	}
	campaign, err := s.campaigns.ExecuteCampaign(ctx, campaignID,
		func(c *models.Campaign) error { return c.CanApprove() },
		func(c *models.Campaign) { c.ApplyApproval() },
	)
	if err != nil {
		return nil, wrapCampaignErr(err)
	}
	return campaign, nil
}

// CloseCampaign ends a campaign. Allowed for the owning shelter and admins;
// closing is terminal regardless of whether the target was reached.
func (s *Service) CloseCampaign(ctx context.Context, actor requestcontext.AuthPrincipal, campaignID uuid.UUID) (*models.Campaign, error) {
	campaign, err := s.campaigns.FindCampaign(ctx, campaignID)
	if err != nil {
		return nil, wrapCampaignErr(err)
	}
	if identity.Role(actor.Role) != identity.RoleAdmin && campaign.OwnerShelterID != actor.UserID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the owning shelter or an admin can close a campaign")
	}
	campaign, err = s.campaigns.ExecuteCampaign(ctx, campaignID,
		func(c *models.Campaign) error { return c.CanClose() },
		func(c *models.Campaign) { c.ApplyClose() },
	)
	if err != nil {
		return nil, wrapCampaignErr(err)
	}
	return campaign, nil
}

// Donate appends a donation and bumps the campaign amount as one atomic
// unit.
func (s *Service) Donate(ctx context.Context, actor requestcontext.AuthPrincipal, campaignID uuid.UUID, amount int64, anonymous bool) (*models.Donation, error) {
	now := requestcontext.Now(ctx)
	donation, err := models.NewDonation(uuid.New(), campaignID, actor.UserID, amount, anonymous, now)
	if err != nil {
		return nil, err
	}
	if _, err := s.campaigns.RecordDonation(ctx, donation,
		func(c *models.Campaign) error { return c.CanAcceptDonation(now) },
	); err != nil {
		return nil, wrapCampaignErr(err)
	}
	if s.metrics != nil {
		s.metrics.DonationsRecorded.Inc()
	}
	return donation, nil
}

// GetReport fetches a report by id.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, err := s.reports.FindReport(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load report")
	}
	return report, nil
}

// GetAdoption fetches an adoption by id.
func (s *Service) GetAdoption(ctx context.Context, id uuid.UUID) (*models.Adoption, error) {
	adoption, err := s.adoptions.FindAdoption(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "adoption not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load adoption")
	}
	return adoption, nil
}

// GetCampaign fetches a campaign by id.
func (s *Service) GetCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign, err := s.campaigns.FindCampaign(ctx, id)
	if err != nil {
		return nil, wrapCampaignErr(err)
	}
	return campaign, nil
}

func wrapCampaignErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "campaign not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "campaign operation failed")
}
