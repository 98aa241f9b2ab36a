package models

import (
	"html"
	"slices"
	"strings"
	"time"
)

const (
	RoleAdmin          = "admin"
	RoleSales          = "sales"
	RoleBD             = "bd"
	RoleTelecaller     = "telecaller"
	RoleDataEnrichment = "data_enrichment"
)

var Roles = []string{RoleAdmin, RoleSales, RoleBD, RoleTelecaller, RoleDataEnrichment}

// User matches the users table.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) Prepare() {
	u.Email = html.EscapeString(strings.ToLower(strings.TrimSpace(u.Email)))
	u.Name = strings.TrimSpace(u.Name)
	if u.Role == "" {
		u.Role = RoleSales
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}
