package stageview

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"workbooster/internal/models"
)

// Criteria is the filter and sort state of a lead table.
type Criteria struct {
	Search     string
	StageID    *int64
	SourceID   *int64
	IndustryID *int64
	LOBID      *int64
	CityID     *int64
	ProductID  *int64
	Outcome    string
	// From and To bound the lead creation date, both inclusive at day granularity.
	From *time.Time
	To   *time.Time
	Sort string
	Desc bool
}

// Apply runs the filter chain: stage scope, free-text search, equality filters and the
// creation date range, all AND-combined, then the column sort. Filters the view does not
// expose are ignored.
func (v View) Apply(rows []models.LeadRow, c Criteria) []models.LeadRow {
	out := make([]models.LeadRow, 0, len(rows))
	search := strings.ToLower(strings.TrimSpace(c.Search))

	for _, r := range rows {
		if len(v.Stages) > 0 && !slices.Contains(v.Stages, r.StageName) {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		if !v.matchesEquality(r, c) {
			continue
		}
		if !inRange(r.CreatedAt, c.From, c.To) {
			continue
		}
		out = append(out, r)
	}

	sortKey, desc := c.Sort, c.Desc
	if sortKey == "" || !v.sortable(sortKey) {
		sortKey, desc = "created_at", true
	}
	slices.SortStableFunc(out, func(a, b models.LeadRow) int {
		n := compareBy(sortKey, a, b)
		if desc {
			return -n
		}
		return n
	})
	return out
}

func matchesSearch(r models.LeadRow, q string) bool {
	fields := []*string{&r.AccountName, r.ContactName, r.ContactPhone, r.SourceName, r.CityName, r.Notes}
	for _, f := range fields {
		if f != nil && strings.Contains(strings.ToLower(*f), q) {
			return true
		}
	}
	return false
}

func (v View) matchesEquality(r models.LeadRow, c Criteria) bool {
	checks := []struct {
		key  FilterKey
		want *int64
		got  *int64
	}{
		{FilterStage, c.StageID, &r.StageID},
		{FilterSource, c.SourceID, r.SourceID},
		{FilterIndustry, c.IndustryID, r.IndustryID},
		{FilterLOB, c.LOBID, r.LOBID},
		{FilterCity, c.CityID, r.CityID},
		{FilterProduct, c.ProductID, r.ProductID},
	}
	for _, ch := range checks {
		if ch.want == nil || !v.HasFilter(ch.key) {
			continue
		}
		if ch.got == nil || *ch.got != *ch.want {
			return false
		}
	}
	if c.Outcome != "" && v.HasFilter(FilterOutcome) {
		if r.LastCallOutcome == nil || *r.LastCallOutcome != c.Outcome {
			return false
		}
	}
	return true
}

func inRange(created time.Time, from, to *time.Time) bool {
	day := truncateDay(created)
	if from != nil && day.Before(truncateDay(*from)) {
		return false
	}
	if to != nil && day.After(truncateDay(*to)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func compareBy(key string, a, b models.LeadRow) int {
	switch key {
	case "account_name":
		return cmp.Compare(strings.ToLower(a.AccountName), strings.ToLower(b.AccountName))
	case "industry_name":
		return compareStr(a.IndustryName, b.IndustryName)
	case "city_name":
		return compareStr(a.CityName, b.CityName)
	case "stage_name":
		return cmp.Compare(a.StageName, b.StageName)
	case "status_name":
		return cmp.Compare(a.StatusName, b.StatusName)
	case "source_name":
		return compareStr(a.SourceName, b.SourceName)
	case "product_name":
		return compareStr(a.ProductName, b.ProductName)
	case "telecaller_name":
		return compareStr(a.TelecallerName, b.TelecallerName)
	case "bd_name":
		return compareStr(a.BDName, b.BDName)
	case "expected_value":
		return comparePtr(a.ExpectedValue, b.ExpectedValue, cmp.Compare[float64])
	case "follow_up_at":
		return comparePtr(a.FollowUpAt, b.FollowUpAt, func(x, y time.Time) int { return x.Compare(y) })
	default:
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	}
}

func compareStr(a, b *string) int {
	return comparePtr(a, b, func(x, y string) int {
		return cmp.Compare(strings.ToLower(x), strings.ToLower(y))
	})
}

// comparePtr orders nil before any value.
func comparePtr[T any](a, b *T, f func(T, T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return f(*a, *b)
}
