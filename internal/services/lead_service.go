package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workbooster/internal/apperrors"
	"workbooster/internal/metrics"
	"workbooster/internal/models"
	"workbooster/internal/repositories"
	"workbooster/internal/stageview"
	"workbooster/internal/validation"
)

// LeadRequest is the body of POST and PUT /api/leads.
type LeadRequest struct {
	AccountID        int64      `json:"account_id" binding:"required,gt=0"`
	StageID          int64      `json:"stage_id" binding:"required,gt=0"`
	StatusID         *int64     `json:"status_id" binding:"omitempty,gt=0"`
	SourceID         *int64     `json:"source_id" binding:"omitempty,gt=0"`
	ProductID        *int64     `json:"product_id" binding:"omitempty,gt=0"`
	LOBID            *int64     `json:"lob_id" binding:"omitempty,gt=0"`
	GeneratedBy      *int64     `json:"generated_by" binding:"omitempty,gt=0"`
	TelecallerID     *int64     `json:"telecaller_id" binding:"omitempty,gt=0"`
	BDID             *int64     `json:"bd_id" binding:"omitempty,gt=0"`
	DataEnrichmentID *int64     `json:"data_enrichment_id" binding:"omitempty,gt=0"`
	ExpectedValue    *float64   `json:"expected_value" binding:"omitempty,gte=0"`
	FollowUpAt       *time.Time `json:"follow_up_at"`
	Notes            *string    `json:"notes"`
}

type StageChangeRequest struct {
	StageID  int64  `json:"stage_id" binding:"required,gt=0"`
	StatusID *int64 `json:"status_id" binding:"omitempty,gt=0"`
}

type LeadService struct {
	leads    LeadStore
	accounts AccountStore
	lookups  LookupStore
	users    UserStore
	metrics  *metrics.Metrics
}

func NewLeadService(leads LeadStore, accounts AccountStore, lookups LookupStore, users UserStore, m *metrics.Metrics) *LeadService {
	return &LeadService{leads: leads, accounts: accounts, lookups: lookups, users: users, metrics: m}
}

func view(kind string) (stageview.View, error) {
	if kind == "" {
		kind = string(stageview.KindAll)
	}
	v, err := stageview.For(stageview.Kind(kind))
	if err != nil {
		return stageview.View{}, apperrors.Validation("%v", err)
	}
	return v, nil
}

// List loads the leads of a page and runs them through the page's filter chain.
func (s *LeadService) List(ctx context.Context, kind string, c stageview.Criteria) ([]models.LeadRow, error) {
	v, err := view(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.leads.List(ctx, repositories.LeadFilter{StageNames: v.Stages})
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return v.Apply(rows, c), nil
}

func (s *LeadService) Views() []stageview.View {
	return stageview.All()
}

func (s *LeadService) Get(ctx context.Context, id int64) (*models.LeadRow, error) {
	lead, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, apperrors.NotFound("lead %d not found", id)
	}
	return lead, nil
}

func (s *LeadService) Create(ctx context.Context, actor *models.Session, req LeadRequest) (*models.LeadRow, error) {
	lead, err := s.create(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	s.metrics.LeadCreated("api")
	return s.Get(ctx, lead.ID)
}

func (s *LeadService) create(ctx context.Context, actor *models.Session, req LeadRequest) (*models.Lead, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.GeneratedBy == nil && actor != nil {
		req.GeneratedBy = &actor.UserID
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	stage, err := s.stage(ctx, req.StageID)
	if err != nil {
		return nil, err
	}
	status, err := s.statusFor(ctx, stage, req.StatusID)
	if err != nil {
		return nil, err
	}

	lead := leadFromRequest(req)
	lead.StatusID = status.ID
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// Update replaces the editable fields. When the stage changes and the submitted status is
// missing or belongs to another stage, the lead moves to the new stage's first status.
func (s *LeadService) Update(ctx context.Context, id int64, req LeadRequest) (*models.LeadRow, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	stage, err := s.stage(ctx, req.StageID)
	if err != nil {
		return nil, err
	}

	var status *models.Status
	switch {
	case stage.ID != current.StageID:
		status, err = s.statusOrFirst(ctx, stage, req.StatusID)
	case req.StatusID == nil:
		status, err = s.statusOrFirst(ctx, stage, &current.StatusID)
	default:
		status, err = s.statusFor(ctx, stage, req.StatusID)
	}
	if err != nil {
		return nil, err
	}

	lead := leadFromRequest(req)
	lead.ID = id
	lead.StatusID = status.ID
	found, err := s.leads.Update(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}
	if !found {
		return nil, apperrors.NotFound("lead %d not found", id)
	}
	return s.Get(ctx, id)
}

// ChangeStage moves a lead. An explicit status must belong to the target stage; without
// one the lead lands on the stage's first status, or keeps its status if the stage is
// unchanged.
func (s *LeadService) ChangeStage(ctx context.Context, id int64, req StageChangeRequest) (*models.LeadRow, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stage, err := s.stage(ctx, req.StageID)
	if err != nil {
		return nil, err
	}
	var status *models.Status
	if req.StatusID == nil && stage.ID == current.StageID {
		status, err = s.statusOrFirst(ctx, stage, &current.StatusID)
	} else {
		status, err = s.statusFor(ctx, stage, req.StatusID)
	}
	if err != nil {
		return nil, err
	}

	found, err := s.leads.UpdateStage(ctx, id, stage.ID, status.ID)
	if err != nil {
		return nil, fmt.Errorf("change stage: %w", err)
	}
	if !found {
		return nil, apperrors.NotFound("lead %d not found", id)
	}
	return s.Get(ctx, id)
}

func (s *LeadService) Delete(ctx context.Context, id int64) error {
	found, err := s.leads.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NotFound("lead %d not found", id)
	}
	return nil
}

func (s *LeadService) stage(ctx context.Context, id int64) (*models.Stage, error) {
	stage, err := s.lookups.StageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stage == nil {
		return nil, apperrors.Validation("stage_id %d does not exist", id)
	}
	return stage, nil
}

// statusFor returns the requested status, which must belong to stage, or the stage's
// first status when none was requested.
func (s *LeadService) statusFor(ctx context.Context, stage *models.Stage, statusID *int64) (*models.Status, error) {
	if statusID == nil {
		return s.firstStatus(ctx, stage)
	}
	status, err := s.lookups.StatusByID(ctx, *statusID)
	if err != nil {
		return nil, err
	}
	if status == nil || status.StageID != stage.ID {
		return nil, apperrors.Validation("status_id %d does not belong to stage %q", *statusID, stage.Name)
	}
	return status, nil
}

// statusOrFirst keeps statusID when it is valid for stage and falls back to the first
// status otherwise.
func (s *LeadService) statusOrFirst(ctx context.Context, stage *models.Stage, statusID *int64) (*models.Status, error) {
	if statusID != nil {
		status, err := s.lookups.StatusByID(ctx, *statusID)
		if err != nil {
			return nil, err
		}
		if status != nil && status.StageID == stage.ID {
			return status, nil
		}
	}
	return s.firstStatus(ctx, stage)
}

func (s *LeadService) firstStatus(ctx context.Context, stage *models.Stage) (*models.Status, error) {
	status, err := s.lookups.FirstStatus(ctx, stage.ID)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, apperrors.Conflict("stage %q has no statuses", stage.Name)
	}
	return status, nil
}

func (s *LeadService) checkReferences(ctx context.Context, req LeadRequest) error {
	account, err := s.accounts.FindByID(ctx, req.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return apperrors.Validation("account_id %d does not exist", req.AccountID)
	}
	return validateAssignees(ctx, s.users, map[string]*int64{
		"generated_by":       req.GeneratedBy,
		"telecaller_id":      req.TelecallerID,
		"bd_id":              req.BDID,
		"data_enrichment_id": req.DataEnrichmentID,
	})
}

func leadFromRequest(req LeadRequest) *models.Lead {
	var notes *string
	if req.Notes != nil {
		if n := strings.TrimSpace(*req.Notes); n != "" {
			notes = &n
		}
	}
	return &models.Lead{
		AccountID:        req.AccountID,
		StageID:          req.StageID,
		SourceID:         req.SourceID,
		ProductID:        req.ProductID,
		LOBID:            req.LOBID,
		GeneratedBy:      req.GeneratedBy,
		TelecallerID:     req.TelecallerID,
		BDID:             req.BDID,
		DataEnrichmentID: req.DataEnrichmentID,
		ExpectedValue:    req.ExpectedValue,
		FollowUpAt:       req.FollowUpAt,
		Notes:            notes,
	}
}
