package services

import (
	"context"
	"fmt"
	"time"

	"workbooster/internal/models"
	"workbooster/internal/utils"
)

type DashboardService struct {
	dashboard DashboardStore
	calls     TelecallStore
	now       func() time.Time
}

func NewDashboardService(dashboard DashboardStore, calls TelecallStore) *DashboardService {
	return &DashboardService{dashboard: dashboard, calls: calls, now: time.Now}
}

func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	now := s.now()
	day := utils.StartOfDay(now)

	stages, err := s.dashboard.StageCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("stage counts: %w", err)
	}
	followUps, err := s.calls.FollowUps(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("follow-ups: %w", err)
	}
	week := utils.StartOfWeek(now)
	users, err := s.dashboard.UserStats(ctx, day, week, week.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	byStatus, err := s.dashboard.AccountsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("accounts by status: %w", err)
	}

	if followUps == nil {
		followUps = []models.FollowUp{}
	}
	return &models.DashboardSummary{
		StageCounts:      stages,
		FollowUpsToday:   len(followUps),
		FollowUps:        followUps,
		UserStats:        users,
		AccountsByStatus: byStatus,
		GeneratedAt:      now,
	}, nil
}
