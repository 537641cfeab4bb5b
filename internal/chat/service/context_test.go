package service

import (
	"context"
	"time"

	casesmodels "github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/chat/models"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

func (s *ChatSuite) submitCat(name string) *casesmodels.Cat {
	cat, err := s.cases.AddCat(s.ctx, s.shelter, name, "Anggora", "", 12, nil)
	s.Require().NoError(err)
	return cat
}

func (s *ChatSuite) submitAdoption(cat *casesmodels.Cat) *casesmodels.Adoption {
	adoption, err := s.cases.SubmitAdoption(s.ctx, s.user, casesmodels.NewAdoptionInput{
		CatID:   cat.ID,
		Address: "Buah Batu",
		Reason:  "Rumah sudah siap",
	})
	s.Require().NoError(err)
	return adoption
}

func (s *ChatSuite) submitUserReport() *casesmodels.Report {
	reporterID := s.user.UserID
	report, err := s.cases.SubmitReport(s.ctx, casesmodels.NewReportInput{
		ReporterID:    &reporterID,
		ConditionTags: []string{"Kurus Sekali"},
		Address:       "Taman Lansia",
	})
	s.Require().NoError(err)
	return report
}

// Scenario A: the adoption shows up immediately, tracks the status as the
// shelter moves it, and never duplicates.
func (s *ChatSuite) TestSharedCasesAdoptionProgression() {
	cat := s.submitCat("Mochi")
	adoption := s.submitAdoption(cat)

	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)

	shared, err := s.chat.SharedCases(s.ctx, s.user, conv.ID)
	s.Require().NoError(err)
	s.Require().Len(shared, 1)
	s.Equal(models.CaseTypeAdoption, shared[0].Type)
	s.Equal(adoption.ID, shared[0].ID)
	s.Equal("Mochi", shared[0].Title)
	s.Equal(string(casesmodels.AdoptionPending), shared[0].Status)

	_, err = s.cases.UpdateStatus(s.ctx, s.shelter, casesmodels.EntityAdoption, adoption.ID, casesmodels.AdoptionInterview)
	s.Require().NoError(err)

	shared, err = s.chat.SharedCases(s.ctx, s.user, conv.ID)
	s.Require().NoError(err)
	s.Require().Len(shared, 1)
	s.Equal(string(casesmodels.AdoptionInterview), shared[0].Status)
	s.Equal("Tahap Wawancara", shared[0].StatusLabel)
}

// Scenario B: a report filed from the user's account stays hidden from the
// admin conversation while pending and appears once verified.
func (s *ChatSuite) TestSharedCasesReportAppearsAfterVerification() {
	report := s.submitUserReport()

	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.admin.UserID)
	s.Require().NoError(err)

	shared, err := s.chat.SharedCases(s.ctx, s.user, conv.ID)
	s.Require().NoError(err)
	s.Empty(shared)

	_, err = s.cases.UpdateStatus(s.ctx, s.admin, casesmodels.EntityReport, report.ID, casesmodels.ReportVerified)
	s.Require().NoError(err)

	shared, err = s.chat.SharedCases(s.ctx, s.user, conv.ID)
	s.Require().NoError(err)
	s.Require().Len(shared, 1)
	s.Equal(models.CaseTypeReport, shared[0].Type)
	s.Equal(report.ID, shared[0].ID)
	s.Equal("Kurus Sekali - Taman Lansia", shared[0].Title)
	s.Equal("Terverifikasi", shared[0].StatusLabel)
}

// Reports only surface when the opposite participant's role handles reports.
func (s *ChatSuite) TestSharedCasesReportRoleConvention() {
	report := s.submitUserReport()
	_, err := s.cases.UpdateStatus(s.ctx, s.admin, casesmodels.EntityReport, report.ID, casesmodels.ReportVerified)
	s.Require().NoError(err)

	other := s.addUser("Pengguna Lain", "USER")
	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, other.UserID)
	s.Require().NoError(err)

	shared, err := s.chat.SharedCases(s.ctx, s.user, conv.ID)
	s.Require().NoError(err)
	s.Empty(shared)
}

func (s *ChatSuite) TestSharedCasesOrdering() {
	// Two adoptions and one verified report between the same parties.
	older := s.submitAdoption(s.submitCat("Belang"))
	time.Sleep(2 * time.Millisecond)
	laterCtx := requestcontext.WithTime(context.Background(), time.Now())
	newerCat := s.submitCat("Putih")
	newer, err := s.cases.SubmitAdoption(laterCtx, s.user, casesmodels.NewAdoptionInput{
		CatID:   newerCat.ID,
		Address: "Buah Batu",
	})
	s.Require().NoError(err)

	report := s.submitUserReport()
	_, err = s.cases.UpdateStatus(s.ctx, s.shelter, casesmodels.EntityReport, report.ID, casesmodels.ReportVerified)
	s.Require().NoError(err)

	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)

	shared, err := s.chat.SharedCases(s.ctx, s.user, conv.ID)
	s.Require().NoError(err)
	s.Require().Len(shared, 3)

	// Adoptions lead, newest first; the report trails.
	s.Equal(newer.ID, shared[0].ID)
	s.Equal(older.ID, shared[1].ID)
	s.Equal(models.CaseTypeReport, shared[2].Type)
	s.Equal(report.ID, shared[2].ID)
}

func (s *ChatSuite) TestSharedCasesNonParticipant() {
	conv, err := s.chat.GetOrCreateConversation(s.ctx, s.user, s.shelter.UserID)
	s.Require().NoError(err)
	_, err = s.chat.SharedCases(s.ctx, s.admin, conv.ID)
	s.Error(err)
}
