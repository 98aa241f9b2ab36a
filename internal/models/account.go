package models

import (
	"strings"
	"time"
)

const (
	AccountStatusProspect = "Prospect"
	AccountStatusActive   = "Active"
	AccountStatusDormant  = "Dormant"
)

type Account struct {
	ID                  int64      `json:"id"`
	AccountName         string     `json:"account_name"`
	IndustryID          *int64     `json:"industry_id"`
	IndustryName        *string    `json:"industry_name,omitempty"`
	HeadOffice          *string    `json:"head_office"`
	CityID              *int64     `json:"city_id"`
	CityName            *string    `json:"city_name,omitempty"`
	CountryID           *int64     `json:"country_id"`
	CompanyWebsite      *string    `json:"company_website"`
	Phone               *string    `json:"phone"`
	Email               *string    `json:"email"`
	Status              string     `json:"status"`
	OwnerID             *int64     `json:"owner_id"`
	OwnerName           *string    `json:"owner_name,omitempty"`
	DataCompletionScore int        `json:"data_completion_score"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Contacts    []Contact           `json:"contacts"`
	LOBs        []AccountLOB        `json:"lines_of_business"`
	Departments []AccountDepartment `json:"departments"`
	UseCases    []AccountUseCase    `json:"use_cases"`
	ActiveLead  *LeadSummary        `json:"active_lead,omitempty"`
}

type Contact struct {
	ID          int64   `json:"id"`
	AccountID   int64   `json:"account_id"`
	Name        string  `json:"name"`
	Designation *string `json:"designation"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	IsPrimary   bool    `json:"is_primary"`
}

type AccountLOB struct {
	LOBID int64  `json:"lob_id"`
	Name  string `json:"name,omitempty"`
}

// AccountDepartment links an account to a departments_master row; pain points hang off it.
type AccountDepartment struct {
	ID           int64       `json:"id"`
	DepartmentID int64       `json:"department_id"`
	Name         string      `json:"name,omitempty"`
	PainPoints   []PainPoint `json:"pain_points"`
}

type PainPoint struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

type AccountUseCase struct {
	UseCaseID int64  `json:"use_case_id"`
	Name      string `json:"name,omitempty"`
}

type DuplicateFlags struct {
	AccountNameExists    bool `json:"account_name_exists"`
	CompanyWebsiteExists bool `json:"company_website_exists"`
}

func (f DuplicateFlags) Any() bool {
	return f.AccountNameExists || f.CompanyWebsiteExists
}

func (a *Account) Prepare() {
	a.AccountName = strings.TrimSpace(a.AccountName)
	if a.Status == "" {
		a.Status = AccountStatusProspect
	}
	a.DataCompletionScore = a.CompletionScore()
}

// CompletionScore is the percentage of filled profile attributes.
func (a *Account) CompletionScore() int {
	checks := []bool{
		a.AccountName != "",
		a.IndustryID != nil,
		filled(a.HeadOffice),
		a.CityID != nil,
		filled(a.CompanyWebsite),
		filled(a.Phone),
		filled(a.Email),
		len(a.Contacts) > 0,
		len(a.LOBs) > 0,
		len(a.Departments) > 0,
	}
	done := 0
	for _, ok := range checks {
		if ok {
			done++
		}
	}
	return done * 100 / len(checks)
}

func ValidAccountStatus(status string) bool {
	switch status {
	case AccountStatusProspect, AccountStatusActive, AccountStatusDormant:
		return true
	}
	return false
}

// NormalizeAccountName is the comparison key used for duplicate detection.
func NormalizeAccountName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeWebsite strips scheme, "www." and trailing slashes. The SQL duplicate check
// applies the same rules.
func NormalizeWebsite(website string) string {
	w := strings.ToLower(strings.TrimSpace(website))
	w = strings.TrimPrefix(w, "https://")
	w = strings.TrimPrefix(w, "http://")
	w = strings.TrimPrefix(w, "www.")
	return strings.TrimRight(w, "/")
}

func filled(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
