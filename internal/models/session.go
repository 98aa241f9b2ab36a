package models

import "time"

// Session is the authenticated caller of a request, decoded from the bearer token.
type Session struct {
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
