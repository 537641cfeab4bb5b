package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/piipapoy/pedulikucing-app-sub000/internal/cases/models"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/platform/middleware"
	"github.com/piipapoy/pedulikucing-app-sub000/internal/transport/http/shared"
	dErrors "github.com/piipapoy/pedulikucing-app-sub000/pkg/domain-errors"
	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

// Service is the case workflow surface the handler delegates to.
type Service interface {
	SubmitReport(ctx context.Context, in models.NewReportInput) (*models.Report, error)
	SubmitAdoption(ctx context.Context, actor requestcontext.AuthPrincipal, in models.NewAdoptionInput) (*models.Adoption, error)
	AddCat(ctx context.Context, actor requestcontext.AuthPrincipal, name, breed, description string, ageMonths int, mediaRefs []string) (*models.Cat, error)
	SubmitCampaign(ctx context.Context, actor requestcontext.AuthPrincipal, in models.NewCampaignInput) (*models.Campaign, error)
	ApproveCampaign(ctx context.Context, actor requestcontext.AuthPrincipal, campaignID uuid.UUID) (*models.Campaign, error)
	CloseCampaign(ctx context.Context, actor requestcontext.AuthPrincipal, campaignID uuid.UUID) (*models.Campaign, error)
	Donate(ctx context.Context, actor requestcontext.AuthPrincipal, campaignID uuid.UUID, amount int64, anonymous bool) (*models.Donation, error)
	UpdateStatus(ctx context.Context, actor requestcontext.AuthPrincipal, entity models.EntityType, id uuid.UUID, newStatus models.Status) (models.Status, error)
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	GetAdoption(ctx context.Context, id uuid.UUID) (*models.Adoption, error)
	GetCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
}

// Handler exposes the case workflow endpoints.
type Handler struct {
	cases     Service
	logger    *slog.Logger
	validator middleware.TokenValidator
}

func New(cases Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{cases: cases, logger: logger, validator: validator}
}

// Register mounts the case routes. Report submission allows guests; every
// other write requires auth.
func (h *Handler) Register(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.OptionalAuth(h.validator, h.logger)).Post("/", h.handleSubmitReport)
		r.Get("/{reportID}", h.handleGetReport)
	})

	r.Route("/adoptions", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Post("/", h.handleSubmitAdoption)
		r.Get("/{adoptionID}", h.handleGetAdoption)
	})

	r.With(middleware.RequireAuth(h.validator, h.logger)).
		Post("/cats", h.handleAddCat)

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/{campaignID}", h.handleGetCampaign)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.validator, h.logger))
			r.Post("/", h.handleSubmitCampaign)
			r.Post("/{campaignID}/approve", h.handleApproveCampaign)
			r.Post("/{campaignID}/close", h.handleCloseCampaign)
			r.Post("/{campaignID}/donations", h.handleDonate)
		})
	})

	r.With(middleware.RequireAuth(h.validator, h.logger)).
		Patch("/cases/{entityType}/{caseID}/status", h.handleUpdateStatus)
}

type submitReportRequest struct {
	ReporterName  string   `json:"reporter_name,omitempty"`
	ReporterPhone string   `json:"reporter_phone,omitempty"`
	ConditionTags []string `json:"condition_tags" validate:"required,min=1"`
	Description   string   `json:"description,omitempty"`
	MediaRefs     []string `json:"media_refs,omitempty"`
	Address       string   `json:"address" validate:"required"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
}

func (h *Handler) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req submitReportRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	in := models.NewReportInput{
		ReporterName:  req.ReporterName,
		ReporterPhone: req.ReporterPhone,
		ConditionTags: req.ConditionTags,
		Description:   req.Description,
		MediaRefs:     req.MediaRefs,
		Address:       req.Address,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	}
	if userID := requestcontext.UserID(ctx); userID != uuid.Nil {
		in.ReporterID = &userID
	}
	report, err := h.cases.SubmitReport(ctx, in)
	if err != nil {
		h.logError(ctx, "submit report failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	h.getByID(w, r, "reportID", func(ctx context.Context, id uuid.UUID) (any, error) {
		return h.cases.GetReport(ctx, id)
	})
}

type submitAdoptionRequest struct {
	CatID      uuid.UUID `json:"cat_id" validate:"required"`
	Occupation string    `json:"occupation,omitempty"`
	Address    string    `json:"address" validate:"required"`
	Reason     string    `json:"reason,omitempty"`
}

func (h *Handler) handleSubmitAdoption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req submitAdoptionRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	adoption, err := h.cases.SubmitAdoption(ctx, requestcontext.Principal(ctx), models.NewAdoptionInput{
		CatID:      req.CatID,
		Occupation: req.Occupation,
		Address:    req.Address,
		Reason:     req.Reason,
	})
	if err != nil {
		h.logError(ctx, "submit adoption failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, adoption)
}

func (h *Handler) handleGetAdoption(w http.ResponseWriter, r *http.Request) {
	h.getByID(w, r, "adoptionID", func(ctx context.Context, id uuid.UUID) (any, error) {
		return h.cases.GetAdoption(ctx, id)
	})
}

type addCatRequest struct {
	Name        string   `json:"name" validate:"required"`
	Breed       string   `json:"breed,omitempty"`
	AgeMonths   int      `json:"age_months" validate:"gte=0"`
	Description string   `json:"description,omitempty"`
	MediaRefs   []string `json:"media_refs,omitempty"`
}

func (h *Handler) handleAddCat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addCatRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	cat, err := h.cases.AddCat(ctx, requestcontext.Principal(ctx),
		req.Name, req.Breed, req.Description, req.AgeMonths, req.MediaRefs)
	if err != nil {
		h.logError(ctx, "add cat failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, cat)
}

type submitCampaignRequest struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description,omitempty"`
	TargetAmount int64     `json:"target_amount" validate:"required,gt=0"`
	Deadline     time.Time `json:"deadline" validate:"required"`
}

func (h *Handler) handleSubmitCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req submitCampaignRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	campaign, err := h.cases.SubmitCampaign(ctx, requestcontext.Principal(ctx), models.NewCampaignInput{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
	})
	if err != nil {
		h.logError(ctx, "submit campaign failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, campaign)
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	h.getByID(w, r, "campaignID", func(ctx context.Context, id uuid.UUID) (any, error) {
		return h.cases.GetCampaign(ctx, id)
	})
}

func (h *Handler) handleApproveCampaign(w http.ResponseWriter, r *http.Request) {
	h.campaignAction(w, r, "approve campaign failed", h.cases.ApproveCampaign)
}

func (h *Handler) handleCloseCampaign(w http.ResponseWriter, r *http.Request) {
	h.campaignAction(w, r, "close campaign failed", h.cases.CloseCampaign)
}

type donateRequest struct {
	Amount    int64 `json:"amount" validate:"required,gt=0"`
	Anonymous bool  `json:"anonymous"`
}

func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	campaignID, err := pathUUID(r, "campaignID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req donateRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	donation, err := h.cases.Donate(ctx, requestcontext.Principal(ctx), campaignID, req.Amount, req.Anonymous)
	if err != nil {
		h.logError(ctx, "donate failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, donation)
}

type updateStatusRequest struct {
	NewStatus string `json:"new_status" validate:"required"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req updateStatusRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	entity := models.EntityType(chi.URLParam(r, "entityType"))
	status, err := h.cases.UpdateStatus(ctx, requestcontext.Principal(ctx), entity, caseID, models.Status(req.NewStatus))
	if err != nil {
		h.logError(ctx, "update status failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"status":       string(status),
		"status_label": status.Label(),
	})
}

func (h *Handler) campaignAction(w http.ResponseWriter, r *http.Request, logMsg string, action func(context.Context, requestcontext.AuthPrincipal, uuid.UUID) (*models.Campaign, error)) {
	ctx := r.Context()
	campaignID, err := pathUUID(r, "campaignID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	campaign, err := action(ctx, requestcontext.Principal(ctx), campaignID)
	if err != nil {
		h.logError(ctx, logMsg, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, campaign)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request, param string, fetch func(context.Context, uuid.UUID) (any, error)) {
	ctx := r.Context()
	id, err := pathUUID(r, param)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	body, err := fetch(ctx, id)
	if err != nil {
		h.logError(ctx, "lookup failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, body)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", param)
	}
	return id, nil
}
