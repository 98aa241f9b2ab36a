package models

import "time"

type Lead struct {
	ID               int64      `json:"id"`
	AccountID        int64      `json:"account_id"`
	StageID          int64      `json:"stage_id"`
	StatusID         int64      `json:"status_id"`
	SourceID         *int64     `json:"source_id"`
	ProductID        *int64     `json:"product_id"`
	LOBID            *int64     `json:"lob_id"`
	GeneratedBy      *int64     `json:"generated_by"`
	TelecallerID     *int64     `json:"telecaller_id"`
	BDID             *int64     `json:"bd_id"`
	DataEnrichmentID *int64     `json:"data_enrichment_id"`
	ExpectedValue    *float64   `json:"expected_value"`
	FollowUpAt       *time.Time `json:"follow_up_at"`
	Notes            *string    `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// LeadRow is a lead joined with the names the list pages display and filter on.
type LeadRow struct {
	Lead

	AccountName        string     `json:"account_name"`
	IndustryID         *int64     `json:"industry_id"`
	IndustryName       *string    `json:"industry_name"`
	CityID             *int64     `json:"city_id"`
	CityName           *string    `json:"city_name"`
	StageName          string     `json:"stage_name"`
	StatusName         string     `json:"status_name"`
	SourceName         *string    `json:"source_name"`
	ProductName        *string    `json:"product_name"`
	LOBName            *string    `json:"lob_name"`
	ContactName        *string    `json:"contact_name"`
	ContactPhone       *string    `json:"contact_phone"`
	GeneratorName      *string    `json:"generator_name"`
	TelecallerName     *string    `json:"telecaller_name"`
	BDName             *string    `json:"bd_name"`
	DataEnrichmentName *string    `json:"data_enrichment_name"`
	LastCallOutcome    *string    `json:"last_call_outcome"`
	LastCallAt         *time.Time `json:"last_call_at"`
}

type LeadSummary struct {
	ID         int64     `json:"id"`
	StageName  string    `json:"stage_name"`
	StatusName string    `json:"status_name"`
	CreatedAt  time.Time `json:"created_at"`
}
