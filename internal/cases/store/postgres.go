package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/sentinel"
	txcontext "github.com/piipapoy/pedulikucing-app-sub000/pkg/platform/tx"
)

// Postgres persists case aggregates. Execute* methods take a row lock with
// SELECT ... FOR UPDATE so concurrent transitions on the same entity
// serialize at the database.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) querier(ctx context.Context) rowQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

const reportColumns = `id, reporter_id, reporter_name, reporter_phone, condition_tags,
	description, media_refs, address, latitude, longitude, status, created_at`

func (s *Postgres) CreateReport(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.querier(ctx).ExecContext(ctx, query,
		report.ID, report.ReporterID, report.ReporterName, report.ReporterPhone,
		pq.Array(report.ConditionTags), report.Description, pq.Array(report.MediaRefs),
		report.Address, report.Latitude, report.Longitude, string(report.Status), report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func scanReport(scan func(dest ...any) error) (*models.Report, error) {
	var r models.Report
	var status string
	err := scan(
		&r.ID, &r.ReporterID, &r.ReporterName, &r.ReporterPhone,
		pq.Array(&r.ConditionTags), &r.Description, pq.Array(&r.MediaRefs),
		&r.Address, &r.Latitude, &r.Longitude, &status, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = models.Status(status)
	return &r, nil
}

func (s *Postgres) FindReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	row := s.querier(ctx).QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	r, err := scanReport(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return r, nil
}

func (s *Postgres) ListReportsByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE reporter_id = $1 ORDER BY created_at DESC`, reporterID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		r, err := scanReport(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Postgres) ExecuteReport(ctx context.Context, id uuid.UUID, validate func(*models.Report) error, mutate func(*models.Report)) (*models.Report, error) {
	var out *models.Report
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		row := s.querier(ctx).QueryRowContext(ctx,
			`SELECT `+reportColumns+` FROM reports WHERE id = $1 FOR UPDATE`, id)
		r, err := scanReport(row.Scan)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock report: %w", err)
		}
		if err := validate(r); err != nil {
			return err
		}
		mutate(r)
		_, err = s.querier(ctx).ExecContext(ctx,
			`UPDATE reports SET status = $2 WHERE id = $1`, id, string(r.Status))
		if err != nil {
			return fmt.Errorf("update report: %w", err)
		}
		out = r
		return nil
	})
	return out, err
}

// ---------------------------------------------------------------------------
// Adoptions
// ---------------------------------------------------------------------------

const adoptionColumns = `id, applicant_id, cat_id, occupation, address, reason, status, created_at`

func (s *Postgres) CreateAdoption(ctx context.Context, adoption *models.Adoption) error {
	query := `
		INSERT INTO adoptions (` + adoptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.querier(ctx).ExecContext(ctx, query,
		adoption.ID, adoption.ApplicantID, adoption.CatID,
		adoption.Occupation, adoption.Address, adoption.Reason,
		string(adoption.Status), adoption.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert adoption: %w", err)
	}
	return nil
}

func scanAdoption(scan func(dest ...any) error) (*models.Adoption, error) {
	var a models.Adoption
	var status string
	err := scan(&a.ID, &a.ApplicantID, &a.CatID, &a.Occupation, &a.Address, &a.Reason, &status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = models.Status(status)
	return &a, nil
}

func (s *Postgres) FindAdoption(ctx context.Context, id uuid.UUID) (*models.Adoption, error) {
	row := s.querier(ctx).QueryRowContext(ctx,
		`SELECT `+adoptionColumns+` FROM adoptions WHERE id = $1`, id)
	a, err := scanAdoption(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find adoption: %w", err)
	}
	return a, nil
}

func (s *Postgres) ListAdoptionsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]models.Adoption, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+adoptionColumns+` FROM adoptions WHERE applicant_id = $1 ORDER BY created_at DESC`, applicantID)
	if err != nil {
		return nil, fmt.Errorf("list adoptions: %w", err)
	}
	defer rows.Close()

	var out []models.Adoption
	for rows.Next() {
		a, err := scanAdoption(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan adoption: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Postgres) ExecuteAdoption(ctx context.Context, id uuid.UUID, validate func(*models.Adoption) error, mutate func(*models.Adoption)) (*models.Adoption, error) {
	var out *models.Adoption
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		row := s.querier(ctx).QueryRowContext(ctx,
			`SELECT `+adoptionColumns+` FROM adoptions WHERE id = $1 FOR UPDATE`, id)
		a, err := scanAdoption(row.Scan)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock adoption: %w", err)
		}
		if err := validate(a); err != nil {
			return err
		}
		mutate(a)
		_, err = s.querier(ctx).ExecContext(ctx,
			`UPDATE adoptions SET status = $2 WHERE id = $1`, id, string(a.Status))
		if err != nil {
			return fmt.Errorf("update adoption: %w", err)
		}
		out = a
		return nil
	})
	return out, err
}

// ---------------------------------------------------------------------------
// Cats
// ---------------------------------------------------------------------------

func (s *Postgres) SaveCat(ctx context.Context, cat *models.Cat) error {
	query := `
		INSERT INTO cats (id, owner_shelter_id, name, breed, age_months, description, media_refs, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    breed = EXCLUDED.breed,
		    age_months = EXCLUDED.age_months,
		    description = EXCLUDED.description,
		    media_refs = EXCLUDED.media_refs
	`
	_, err := s.db.ExecContext(ctx, query,
		cat.ID, cat.OwnerShelterID, cat.Name, cat.Breed, cat.AgeMonths,
		cat.Description, pq.Array(cat.MediaRefs), cat.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save cat: %w", err)
	}
	return nil
}

func (s *Postgres) FindCat(ctx context.Context, id uuid.UUID) (*models.Cat, error) {
	row := s.querier(ctx).QueryRowContext(ctx, `
		SELECT id, owner_shelter_id, name, breed, age_months, description, media_refs, created_at
		FROM cats WHERE id = $1`, id)
	var c models.Cat
	err := row.Scan(&c.ID, &c.OwnerShelterID, &c.Name, &c.Breed, &c.AgeMonths,
		&c.Description, pq.Array(&c.MediaRefs), &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find cat: %w", err)
	}
	return &c, nil
}

// ---------------------------------------------------------------------------
// Campaigns and donations
// ---------------------------------------------------------------------------

const campaignColumns = `id, owner_shelter_id, title, description, target_amount,
	current_amount, deadline, is_approved, is_closed, created_at`

func (s *Postgres) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (` + campaignColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		campaign.ID, campaign.OwnerShelterID, campaign.Title, campaign.Description,
		campaign.TargetAmount, campaign.CurrentAmount, campaign.Deadline,
		campaign.IsApproved, campaign.IsClosed, campaign.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func scanCampaign(scan func(dest ...any) error) (*models.Campaign, error) {
	var c models.Campaign
	err := scan(&c.ID, &c.OwnerShelterID, &c.Title, &c.Description, &c.TargetAmount,
		&c.CurrentAmount, &c.Deadline, &c.IsApproved, &c.IsClosed, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Postgres) FindCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	row := s.querier(ctx).QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find campaign: %w", err)
	}
	return c, nil
}

func (s *Postgres) ExecuteCampaign(ctx context.Context, id uuid.UUID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error) {
	var out *models.Campaign
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		c, err := s.lockCampaign(ctx, id)
		if err != nil {
			return err
		}
		if err := validate(c); err != nil {
			return err
		}
		mutate(c)
		if err := s.updateCampaign(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// RecordDonation inserts the donation row and bumps current_amount in one
// transaction.
func (s *Postgres) RecordDonation(ctx context.Context, donation *models.Donation, validate func(*models.Campaign) error) (*models.Campaign, error) {
	var out *models.Campaign
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context) error {
		c, err := s.lockCampaign(ctx, donation.CampaignID)
		if err != nil {
			return err
		}
		if err := validate(c); err != nil {
			return err
		}
		c.ApplyDonation(donation.Amount)
		if err := s.updateCampaign(ctx, c); err != nil {
			return err
		}
		_, err = s.querier(ctx).ExecContext(ctx, `
			INSERT INTO donations (id, campaign_id, donor_id, amount, anonymous, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			donation.ID, donation.CampaignID, donation.DonorID,
			donation.Amount, donation.Anonymous, donation.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert donation: %w", err)
		}
		out = c
		return nil
	})
	return out, err
}

func (s *Postgres) lockCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	row := s.querier(ctx).QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id)
	c, err := scanCampaign(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock campaign: %w", err)
	}
	return c, nil
}

func (s *Postgres) updateCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE campaigns
		SET current_amount = $2, is_approved = $3, is_closed = $4
		WHERE id = $1`,
		c.ID, c.CurrentAmount, c.IsApproved, c.IsClosed,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

func (s *Postgres) ListDonationsByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.Donation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, campaign_id, donor_id, amount, anonymous, created_at
		FROM donations WHERE campaign_id = $1 ORDER BY created_at`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var out []models.Donation
	for rows.Next() {
		var d models.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.DonorID, &d.Amount, &d.Anonymous, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
