package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemorySuite) seedReport() *models.Report {
	report, err := models.NewReport(uuid.New(), models.NewReportInput{
		ReporterName:  "Siti",
		ReporterPhone: "+628111",
		ConditionTags: []string{"Dehidrasi"},
		Address:       "Pasar Baru",
	}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateReport(s.ctx, report))
	return report
}

func (s *InMemorySuite) TestCreateReportDuplicate() {
	report := s.seedReport()
	err := s.store.CreateReport(s.ctx, report)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemorySuite) TestFindReportNotFound() {
	_, err := s.store.FindReport(s.ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestExecuteReportValidateFailureLeavesStateUntouched() {
	report := s.seedReport()
	_, err := s.store.ExecuteReport(s.ctx, report.ID,
		func(r *models.Report) error { return r.CanTransitionTo(models.ReportRescued) },
		func(r *models.Report) { r.ApplyTransition(models.ReportRescued) },
	)
	s.Error(err)

	stored, err := s.store.FindReport(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(models.ReportPending, stored.Status)
}

func (s *InMemorySuite) TestConcurrentExecuteReportSerializes() {
	report := s.seedReport()

	// Race many VERIFIED transitions; exactly one may commit, the rest must
	// fail the edge check against the already-moved status.
	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.ExecuteReport(s.ctx, report.ID,
				func(r *models.Report) error { return r.CanTransitionTo(models.ReportVerified) },
				func(r *models.Report) { r.ApplyTransition(models.ReportVerified) },
			)
			if err == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, committed)
	stored, err := s.store.FindReport(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(models.ReportVerified, stored.Status)
}

func (s *InMemorySuite) TestListReportsByReporterSkipsGuests() {
	reporterID := uuid.New()
	authed, err := models.NewReport(uuid.New(), models.NewReportInput{
		ReporterID:    &reporterID,
		ConditionTags: []string{"Luka"},
		Address:       "Cimahi",
	}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateReport(s.ctx, authed))
	s.seedReport() // guest

	reports, err := s.store.ListReportsByReporter(s.ctx, reporterID)
	s.Require().NoError(err)
	s.Len(reports, 1)
	s.Equal(authed.ID, reports[0].ID)
}

func (s *InMemorySuite) TestRecordDonationAtomic() {
	now := time.Now()
	campaign, err := models.NewCampaign(uuid.New(), models.NewCampaignInput{
		OwnerShelterID: uuid.New(),
		Title:          "Vaksinasi Massal",
		TargetAmount:   10_000_000,
		Deadline:       now.Add(48 * time.Hour),
	}, now)
	s.Require().NoError(err)
	campaign.ApplyApproval()
	s.Require().NoError(s.store.CreateCampaign(s.ctx, campaign))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			donation, err := models.NewDonation(uuid.New(), campaign.ID, uuid.New(), 50_000, false, now)
			s.Require().NoError(err)
			_, err = s.store.RecordDonation(s.ctx, donation,
				func(c *models.Campaign) error { return c.CanAcceptDonation(now) },
			)
			s.Require().NoError(err)
		}()
	}
	wg.Wait()

	stored, err := s.store.FindCampaign(s.ctx, campaign.ID)
	s.Require().NoError(err)
	s.Equal(int64(20*50_000), stored.CurrentAmount)

	donations, err := s.store.ListDonationsByCampaign(s.ctx, campaign.ID)
	s.Require().NoError(err)
	s.Len(donations, 20)
}

func (s *InMemorySuite) TestRecordDonationRejectedLeavesAmount() {
	now := time.Now()
	campaign, err := models.NewCampaign(uuid.New(), models.NewCampaignInput{
		OwnerShelterID: uuid.New(),
		Title:          "Tertutup",
		TargetAmount:   1_000_000,
		Deadline:       now.Add(time.Hour),
	}, now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateCampaign(s.ctx, campaign))

	donation, err := models.NewDonation(uuid.New(), campaign.ID, uuid.New(), 10_000, false, now)
	s.Require().NoError(err)
	_, err = s.store.RecordDonation(s.ctx, donation,
		func(c *models.Campaign) error { return c.CanAcceptDonation(now) },
	)
	s.Error(err) // unapproved

	stored, err := s.store.FindCampaign(s.ctx, campaign.ID)
	s.Require().NoError(err)
	s.Zero(stored.CurrentAmount)
	donations, err := s.store.ListDonationsByCampaign(s.ctx, campaign.ID)
	s.Require().NoError(err)
	s.Empty(donations)
}
