package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"workbooster/internal/apperrors"
	"workbooster/internal/csvimport"
	"workbooster/internal/metrics"
	"workbooster/internal/models"
	"workbooster/internal/utils"
	"workbooster/internal/validation"
)

const NothingToImport = "nothing to import"

// ImportColumns are the header names the lead import understands.
var ImportColumns = []string{
	"account_name", "industry", "city", "country", "company_website",
	"lead_source", "stage", "status", "product", "expected_value", "follow_up_at",
	"contact_name", "contact_phone", "contact_email", "notes",
}

// ImportError describes one rejected row. Rows are numbered from 1, counting data rows
// only (the header and blank lines are not counted).
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ImportedLead reports one imported row. IgnoredFields lists account columns the row filled
// in that were not applied because the account already existed.
type ImportedLead struct {
	Row            int      `json:"row"`
	LeadID         int64    `json:"lead_id"`
	AccountID      int64    `json:"account_id"`
	AccountName    string   `json:"account_name"`
	AccountCreated bool     `json:"account_created"`
	IgnoredFields  []string `json:"ignored_fields,omitempty"`
}

type ImportResult struct {
	Total          int            `json:"total"`
	ImportedCount  int            `json:"imported_count"`
	FailedCount    int            `json:"failed_count"`
	Imported       []ImportedLead `json:"imported"`
	Errors         []ImportError  `json:"errors"`
	IgnoredColumns []string       `json:"ignored_columns"`
	Notice         string         `json:"notice,omitempty"`
}

// accountColumns only take effect when the import creates the account.
var accountColumns = []string{"industry", "city", "country", "company_website", "contact_name", "contact_phone", "contact_email"}

type importRow struct {
	AccountName    string `json:"account_name" binding:"required,max=200"`
	CompanyWebsite string `json:"company_website" binding:"omitempty,max=255"`
	ContactName    string `json:"contact_name" binding:"omitempty,max=200"`
	ContactEmail   string `json:"contact_email" binding:"omitempty,email"`
}

type ImportService struct {
	accounts *AccountService
	leads    *LeadService
	lookups  LookupStore
	metrics  *metrics.Metrics
	maxRows  int
	loc      *time.Location
}

func NewImportService(accounts *AccountService, leads *LeadService, lookups LookupStore, m *metrics.Metrics, maxRows int) *ImportService {
	if maxRows <= 0 {
		maxRows = 5000
	}
	return &ImportService{accounts: accounts, leads: leads, lookups: lookups, metrics: m, maxRows: maxRows, loc: time.Local}
}

// Import creates one lead per CSV row, creating accounts that do not exist yet. Rows are
// independent: a bad row is reported and skipped, earlier rows stay committed.
func (s *ImportService) Import(ctx context.Context, actor *models.Session, text string) (*ImportResult, error) {
	records := csvimport.Parse(text)
	result := &ImportResult{
		Total:          len(records),
		Imported:       []ImportedLead{},
		Errors:         []ImportError{},
		IgnoredColumns: ignoredColumns(csvimport.Headers(text)),
	}
	if len(records) == 0 {
		result.Notice = NothingToImport
		return result, nil
	}

	if len(records) > s.maxRows {
		result.Errors = append(result.Errors, ImportError{
			Row:     s.maxRows + 1,
			Message: fmt.Sprintf("row limit of %d reached; %d row(s) skipped", s.maxRows, len(records)-s.maxRows),
		})
		records = records[:s.maxRows]
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		row := i + 1
		imported, rowErrs, err := s.importRecord(ctx, actor, row, rec)
		if err != nil {
			return result, fmt.Errorf("import row %d: %w", row, err)
		}
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			result.FailedCount++
			continue
		}
		result.Imported = append(result.Imported, *imported)
		result.ImportedCount++
		s.metrics.LeadCreated("import")
	}

	s.metrics.ImportFinished(result.ImportedCount, result.FailedCount)
	return result, nil
}

// importRecord returns either the imported lead or the row's user-facing errors. The error
// return is reserved for failures that should abort the whole import.
func (s *ImportService) importRecord(ctx context.Context, actor *models.Session, row int, rec csvimport.Record) (*ImportedLead, []ImportError, error) {
	get := func(key string) string { return strings.TrimSpace(rec[key]) }

	base := importRow{
		AccountName:    get("account_name"),
		CompanyWebsite: get("company_website"),
		ContactName:    get("contact_name"),
		ContactEmail:   get("contact_email"),
	}
	var errs []ImportError
	for _, issue := range validation.Issues(base) {
		errs = append(errs, ImportError{Row: row, Field: issue.Field, Value: get(issue.Field), Message: issue.Message})
	}
	fail := func(field string, err error) error {
		msg := apperrors.Message(err)
		if msg == "" {
			return err
		}
		errs = append(errs, ImportError{Row: row, Field: field, Value: get(field), Message: msg})
		return nil
	}

	ids := map[string]*int64{}
	for field, table := range map[string]string{
		"industry":    "industries",
		"city":        "cities",
		"country":     "countries",
		"lead_source": "lead_sources",
		"product":     "products_master",
	} {
		id, err := resolveMaster(ctx, s.lookups, table, get(field))
		if err != nil {
			if err := fail(field, err); err != nil {
				return nil, nil, err
			}
			continue
		}
		ids[field] = id
	}

	stage, status, err := s.resolvePipeline(ctx, get("stage"), get("status"))
	if err != nil {
		field := "stage"
		if stage != nil {
			field = "status"
		}
		if err := fail(field, err); err != nil {
			return nil, nil, err
		}
	}

	var expected *float64
	if v := get("expected_value"); v != "" {
		f, perr := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if perr != nil || f < 0 {
			errs = append(errs, ImportError{Row: row, Field: "expected_value", Value: v, Message: "expected_value must be a non-negative number"})
		} else {
			expected = &f
		}
	}

	var followUp *time.Time
	if v := get("follow_up_at"); v != "" {
		t, perr := utils.ParseTime(v, s.loc)
		if perr != nil {
			errs = append(errs, ImportError{Row: row, Field: "follow_up_at", Value: v, Message: "follow_up_at must be RFC3339, YYYY-MM-DD HH:MM or YYYY-MM-DD"})
		} else {
			followUp = &t
		}
	}

	var phone string
	if v := get("contact_phone"); v != "" {
		phone, err = utils.NormalizePhone(v, s.accounts.defaultRegion)
		if err != nil {
			errs = append(errs, ImportError{Row: row, Field: "contact_phone", Value: v, Message: err.Error()})
		}
	}

	if len(errs) > 0 {
		sortImportErrors(errs)
		return nil, errs, nil
	}

	account, created, err := s.findOrCreateAccount(ctx, actor, base, ids, phone)
	if err != nil {
		if err := fail("account_name", err); err != nil {
			return nil, nil, err
		}
		return nil, errs, nil
	}

	req := LeadRequest{
		AccountID:     account.ID,
		StageID:       stage.ID,
		StatusID:      &status.ID,
		SourceID:      ids["lead_source"],
		ProductID:     ids["product"],
		ExpectedValue: expected,
		FollowUpAt:    followUp,
	}
	if notes := get("notes"); notes != "" {
		req.Notes = &notes
	}
	lead, err := s.leads.create(ctx, actor, req)
	if err != nil {
		if err := fail("", err); err != nil {
			return nil, nil, err
		}
		return nil, errs, nil
	}

	imported := &ImportedLead{
		Row:            row,
		LeadID:         lead.ID,
		AccountID:      account.ID,
		AccountName:    account.AccountName,
		AccountCreated: created,
	}
	if !created {
		for _, col := range accountColumns {
			if get(col) != "" {
				imported.IgnoredFields = append(imported.IgnoredFields, col)
			}
		}
	}
	return imported, nil, nil
}

// resolvePipeline maps stage and status names. A blank stage means the first pipeline
// stage and a blank status the first status of the stage. On a status error the stage
// is still returned.
func (s *ImportService) resolvePipeline(ctx context.Context, stageName, statusName string) (*models.Stage, *models.Status, error) {
	var stage *models.Stage
	if stageName == "" {
		stages, err := s.lookups.Stages(ctx)
		if err != nil {
			return nil, nil, err
		}
		if len(stages) == 0 {
			return nil, nil, errors.New("no pipeline stages configured")
		}
		stage = &stages[0]
	} else {
		found, err := s.lookups.StageByName(ctx, stageName)
		if err != nil {
			return nil, nil, err
		}
		if found == nil {
			return nil, nil, apperrors.Validation("unknown stage %q", stageName)
		}
		stage = found
	}

	if statusName == "" {
		status, err := s.leads.firstStatus(ctx, stage)
		return stage, status, err
	}
	status, err := s.lookups.StatusByName(ctx, stage.ID, statusName)
	if err != nil {
		return stage, nil, err
	}
	if status == nil {
		return stage, nil, apperrors.Validation("status %q does not belong to stage %q", statusName, stage.Name)
	}
	return stage, status, nil
}

func (s *ImportService) findOrCreateAccount(ctx context.Context, actor *models.Session, row importRow, ids map[string]*int64, phone string) (*models.Account, bool, error) {
	existing, err := s.accounts.accounts.FindByName(ctx, row.AccountName)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	req := AccountRequest{
		AccountName: row.AccountName,
		IndustryID:  ids["industry"],
		CityID:      ids["city"],
		CountryID:   ids["country"],
	}
	if row.CompanyWebsite != "" {
		req.CompanyWebsite = &row.CompanyWebsite
	}
	if row.ContactName != "" {
		contact := ContactInput{Name: row.ContactName, IsPrimary: true}
		if phone != "" {
			contact.Phone = &phone
		}
		if row.ContactEmail != "" {
			contact.Email = &row.ContactEmail
		}
		req.Contacts = []ContactInput{contact}
	} else {
		// no contact to attach them to, so they become the account's own details
		if phone != "" {
			req.Phone = &phone
		}
		if row.ContactEmail != "" {
			req.Email = &row.ContactEmail
		}
	}

	account, err := s.accounts.Create(ctx, actor, req)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func ignoredColumns(headers []string) []string {
	ignored := []string{}
	for _, h := range headers {
		if h != "" && !slices.Contains(ImportColumns, h) && !slices.Contains(ignored, h) {
			ignored = append(ignored, h)
		}
	}
	return ignored
}

func sortImportErrors(errs []ImportError) {
	order := func(field string) int {
		if i := slices.Index(ImportColumns, field); i >= 0 {
			return i
		}
		return len(ImportColumns)
	}
	slices.SortStableFunc(errs, func(a, b ImportError) int {
		return order(a.Field) - order(b.Field)
	})
}
