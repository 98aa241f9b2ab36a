package models

import "time"

type StageCount struct {
	StageID   int64  `json:"stage_id"`
	StageName string `json:"stage_name"`
	Count     int    `json:"count"`
}

type UserStat struct {
	UserID           int64  `json:"user_id"`
	UserName         string `json:"user_name"`
	Role             string `json:"role"`
	LeadsOwned       int    `json:"leads_owned"`
	CallsToday       int    `json:"calls_today"`
	MeetingsThisWeek int    `json:"meetings_this_week"`
}

type DashboardSummary struct {
	StageCounts      []StageCount   `json:"stage_counts"`
	FollowUpsToday   int            `json:"follow_ups_today"`
	FollowUps        []FollowUp     `json:"follow_ups"`
	UserStats        []UserStat     `json:"user_stats"`
	AccountsByStatus map[string]int `json:"accounts_by_status"`
	GeneratedAt      time.Time      `json:"generated_at"`
}
