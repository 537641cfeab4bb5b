package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
)

// InMemory keeps every case aggregate behind one mutex. Execute holds that
// lock across validate and mutate, which is what serializes concurrent status
// transitions on the same entity.
type InMemory struct {
	mu        sync.RWMutex
	reports   map[uuid.UUID]models.Report
	adoptions map[uuid.UUID]models.Adoption
	cats      map[uuid.UUID]models.Cat
	campaigns map[uuid.UUID]models.Campaign
	donations map[uuid.UUID][]models.Donation
}

func NewInMemory() *InMemory {
	return &InMemory{
		reports:   make(map[uuid.UUID]models.Report),
		adoptions: make(map[uuid.UUID]models.Adoption),
		cats:      make(map[uuid.UUID]models.Cat),
		campaigns: make(map[uuid.UUID]models.Campaign),
		donations: make(map[uuid.UUID][]models.Donation),
	}
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

func (s *InMemory) CreateReport(_ context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[report.ID]; ok {
		return sentinel.ErrConflict
	}
	s.reports[report.ID] = *report
	return nil
}

func (s *InMemory) FindReport(_ context.Context, id uuid.UUID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.reports[id]; ok {
		out := r
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListReportsByReporter(_ context.Context, reporterID uuid.UUID) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Report
	for _, r := range s.reports {
		if r.ReporterID != nil && *r.ReporterID == reporterID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ExecuteReport runs validate then mutate on a report while holding the
// store lock, so no concurrent transition can interleave.
func (s *InMemory) ExecuteReport(_ context.Context, id uuid.UUID, validate func(*models.Report) error, mutate func(*models.Report)) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&r); err != nil {
		return nil, err
	}
	mutate(&r)
	s.reports[id] = r
	out := r
	return &out, nil
}

// ---------------------------------------------------------------------------
// Adoptions
// ---------------------------------------------------------------------------

func (s *InMemory) CreateAdoption(_ context.Context, adoption *models.Adoption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.adoptions[adoption.ID]; ok {
		return sentinel.ErrConflict
	}
	s.adoptions[adoption.ID] = *adoption
	return nil
}

func (s *InMemory) FindAdoption(_ context.Context, id uuid.UUID) (*models.Adoption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.adoptions[id]; ok {
		out := a
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListAdoptionsByApplicant(_ context.Context, applicantID uuid.UUID) ([]models.Adoption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Adoption
	for _, a := range s.adoptions {
		if a.ApplicantID == applicantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *InMemory) ExecuteAdoption(_ context.Context, id uuid.UUID, validate func(*models.Adoption) error, mutate func(*models.Adoption)) (*models.Adoption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.adoptions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&a); err != nil {
		return nil, err
	}
	mutate(&a)
	s.adoptions[id] = a
	out := a
	return &out, nil
}

// ---------------------------------------------------------------------------
// Cats
// ---------------------------------------------------------------------------

func (s *InMemory) SaveCat(_ context.Context, cat *models.Cat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[cat.ID] = *cat
	return nil
}

func (s *InMemory) FindCat(_ context.Context, id uuid.UUID) (*models.Cat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.cats[id]; ok {
		out := c
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

// ---------------------------------------------------------------------------
// Campaigns and donations
// ---------------------------------------------------------------------------

func (s *InMemory) CreateCampaign(_ context.Context, campaign *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[campaign.ID]; ok {
		return sentinel.ErrConflict
	}
	s.campaigns[campaign.ID] = *campaign
	return nil
}

func (s *InMemory) FindCampaign(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.campaigns[id]; ok {
		out := c
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ExecuteCampaign(_ context.Context, id uuid.UUID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	mutate(&c)
	s.campaigns[id] = c
	out := c
	return &out, nil
}

// RecordDonation appends the donation and bumps the campaign amount as one
// atomic unit. A reader never sees one without the other.
func (s *InMemory) RecordDonation(_ context.Context, donation *models.Donation, validate func(*models.Campaign) error) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[donation.CampaignID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	c.ApplyDonation(donation.Amount)
	s.campaigns[donation.CampaignID] = c
	s.donations[donation.CampaignID] = append(s.donations[donation.CampaignID], *donation)
	out := c
	return &out, nil
}

func (s *InMemory) ListDonationsByCampaign(_ context.Context, campaignID uuid.UUID) ([]models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Donation, len(s.donations[campaignID]))
	copy(out, s.donations[campaignID])
	return out, nil
}
