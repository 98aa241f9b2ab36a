package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workbooster/internal/apperrors"
	"workbooster/internal/metrics"
	"workbooster/internal/models"
	"workbooster/internal/utils"
	"workbooster/internal/validation"
)

type TelecallRequest struct {
	Outcome         string     `json:"outcome" binding:"required"`
	Notes           *string    `json:"notes"`
	DurationSeconds int        `json:"duration_seconds" binding:"gte=0"`
	FollowUpAt      *time.Time `json:"follow_up_at"`
}

type TelecallService struct {
	calls   TelecallStore
	leads   LeadStore
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewTelecallService(calls TelecallStore, leads LeadStore, m *metrics.Metrics) *TelecallService {
	return &TelecallService{calls: calls, leads: leads, metrics: m, now: time.Now}
}

func (s *TelecallService) List(ctx context.Context, leadID int64) ([]models.TelecallLog, error) {
	if err := s.requireLead(ctx, leadID); err != nil {
		return nil, err
	}
	logs, err := s.calls.ListByLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("list telecalls: %w", err)
	}
	return logs, nil
}

// Log appends a call to the lead's history. A follow-up time is copied onto the lead in the
// same transaction by the store.
func (s *TelecallService) Log(ctx context.Context, actor *models.Session, leadID int64, req TelecallRequest) (*models.TelecallLog, error) {
	req.Outcome = strings.TrimSpace(req.Outcome)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !models.ValidOutcome(req.Outcome) {
		return nil, apperrors.Validation("outcome must be one of: %s", strings.Join(models.CallOutcomes, ", "))
	}
	if err := s.requireLead(ctx, leadID); err != nil {
		return nil, err
	}

	log := &models.TelecallLog{
		LeadID:          leadID,
		Outcome:         req.Outcome,
		Notes:           blankToNil(req.Notes),
		DurationSeconds: req.DurationSeconds,
		FollowUpAt:      req.FollowUpAt,
		CalledAt:        s.now(),
	}
	if actor != nil {
		log.UserID = &actor.UserID
	}
	if err := s.calls.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("create telecall: %w", err)
	}
	s.metrics.CallLogged(log.Outcome)
	return log, nil
}

// FollowUps lists the follow-ups due on the given day (YYYY-MM-DD, default today).
func (s *TelecallService) FollowUps(ctx context.Context, date string) ([]models.FollowUp, error) {
	day := utils.StartOfDay(s.now())
	if strings.TrimSpace(date) != "" {
		t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), day.Location())
		if err != nil {
			return nil, apperrors.Validation("date must be YYYY-MM-DD")
		}
		day = t
	}
	items, err := s.calls.FollowUps(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	return items, nil
}

func (s *TelecallService) requireLead(ctx context.Context, leadID int64) error {
	lead, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return fmt.Errorf("find lead: %w", err)
	}
	if lead == nil {
		return apperrors.NotFound("lead %d not found", leadID)
	}
	return nil
}
