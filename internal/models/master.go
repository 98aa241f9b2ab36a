package models

import "time"

// MasterTable describes one id->name lookup table editable from the settings UI.
type MasterTable struct {
	Name        string
	Slug        string
	HasIndustry bool
}

var MasterTables = []MasterTable{
	{Name: "industries", Slug: "industries"},
	{Name: "lead_sources", Slug: "lead-sources"},
	{Name: "cities", Slug: "cities"},
	{Name: "countries", Slug: "countries"},
	{Name: "departments_master", Slug: "departments-master"},
	{Name: "products_master", Slug: "products-master"},
	{Name: "use_cases_master", Slug: "use-cases-master"},
	{Name: "industry_lobs", Slug: "industry-lobs", HasIndustry: true},
}

func MasterTableByName(name string) (MasterTable, bool) {
	for _, t := range MasterTables {
		if t.Name == name {
			return t, true
		}
	}
	return MasterTable{}, false
}

func MasterTableBySlug(slug string) (MasterTable, bool) {
	for _, t := range MasterTables {
		if t.Slug == slug {
			return t, true
		}
	}
	return MasterTable{}, false
}

type MasterItem struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	IndustryID *int64    `json:"industry_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
