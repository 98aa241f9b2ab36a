package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workbooster/internal/apperrors"
	"workbooster/internal/models"
	"workbooster/internal/validation"
)

type MeetingRequest struct {
	LeadID      *int64    `json:"lead_id" binding:"omitempty,gt=0"`
	MeetingType string    `json:"meeting_type" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Notes       *string   `json:"notes"`
	Outcome     *string   `json:"outcome"`
}

type MeetingService struct {
	meetings MeetingStore
	accounts AccountStore
	leads    LeadStore
}

func NewMeetingService(meetings MeetingStore, accounts AccountStore, leads LeadStore) *MeetingService {
	return &MeetingService{meetings: meetings, accounts: accounts, leads: leads}
}

func (s *MeetingService) List(ctx context.Context, accountID int64) ([]models.AccountMeeting, error) {
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	items, err := s.meetings.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return items, nil
}

func (s *MeetingService) Create(ctx context.Context, actor *models.Session, accountID int64, req MeetingRequest) (*models.AccountMeeting, error) {
	req.MeetingType = strings.TrimSpace(req.MeetingType)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !models.ValidMeetingType(req.MeetingType) {
		return nil, apperrors.Validation("meeting_type must be one of: %s", strings.Join(models.MeetingTypes, ", "))
	}
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	if req.LeadID != nil {
		lead, err := s.leads.FindByID(ctx, *req.LeadID)
		if err != nil {
			return nil, fmt.Errorf("find lead: %w", err)
		}
		if lead == nil || lead.AccountID != accountID {
			return nil, apperrors.Validation("lead %d does not belong to account %d", *req.LeadID, accountID)
		}
	}

	m := &models.AccountMeeting{
		AccountID:   accountID,
		LeadID:      req.LeadID,
		MeetingType: req.MeetingType,
		ScheduledAt: req.ScheduledAt,
		Notes:       blankToNil(req.Notes),
		Outcome:     blankToNil(req.Outcome),
	}
	if actor != nil {
		m.UserID = &actor.UserID
	}
	if err := s.meetings.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	return m, nil
}

func (s *MeetingService) requireAccount(ctx context.Context, id int64) error {
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find account: %w", err)
	}
	if a == nil {
		return apperrors.NotFound("account %d not found", id)
	}
	return nil
}
