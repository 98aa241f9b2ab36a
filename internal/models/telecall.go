package models

import (
	"slices"
	"time"
)

const (
	OutcomeConnected     = "connected"
	OutcomeNotReachable  = "not_reachable"
	OutcomeBusy          = "busy"
	OutcomeCallBack      = "call_back"
	OutcomeNotInterested = "not_interested"
	OutcomeInterested    = "interested"
	OutcomeWrongNumber   = "wrong_number"
)

var CallOutcomes = []string{
	OutcomeConnected,
	OutcomeNotReachable,
	OutcomeBusy,
	OutcomeCallBack,
	OutcomeNotInterested,
	OutcomeInterested,
	OutcomeWrongNumber,
}

// TelecallLog is append-only.
type TelecallLog struct {
	ID              int64      `json:"id"`
	LeadID          int64      `json:"lead_id"`
	UserID          *int64     `json:"user_id"`
	UserName        *string    `json:"user_name,omitempty"`
	Outcome         string     `json:"outcome"`
	Notes           *string    `json:"notes"`
	DurationSeconds int        `json:"duration_seconds"`
	FollowUpAt      *time.Time `json:"follow_up_at"`
	CalledAt        time.Time  `json:"called_at"`
}

type FollowUp struct {
	CallID         int64     `json:"call_id"`
	LeadID         int64     `json:"lead_id"`
	AccountName    string    `json:"account_name"`
	Outcome        string    `json:"outcome"`
	FollowUpAt     time.Time `json:"follow_up_at"`
	TelecallerName *string   `json:"telecaller_name"`
}

func ValidOutcome(outcome string) bool {
	return slices.Contains(CallOutcomes, outcome)
}
