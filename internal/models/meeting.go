package models

import (
	"slices"
	"time"
)

var MeetingTypes = []string{"demo", "poc", "follow_up", "review"}

type AccountMeeting struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	LeadID      *int64    `json:"lead_id"`
	UserID      *int64    `json:"user_id"`
	UserName    *string   `json:"user_name,omitempty"`
	MeetingType string    `json:"meeting_type"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       *string   `json:"notes"`
	Outcome     *string   `json:"outcome"`
	CreatedAt   time.Time `json:"created_at"`
}

func ValidMeetingType(t string) bool {
	return slices.Contains(MeetingTypes, t)
}
