package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"workbooster/internal/apperrors"
	"workbooster/internal/csvimport"
	"workbooster/internal/models"
	"workbooster/internal/stageview"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	xlsxSheet = "Leads"
)

// Export is a rendered download.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ExportService struct {
	leads *LeadService
	now   func() time.Time
}

func NewExportService(leads *LeadService) *ExportService {
	return &ExportService{leads: leads, now: time.Now}
}

// Export renders the rows of a view, filtered like the list endpoint, with the view's
// columns preceded by the lead id.
func (s *ExportService) Export(ctx context.Context, kind, format string, c stageview.Criteria) (*Export, error) {
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, apperrors.Validation("format must be csv or xlsx")
	}
	v, err := view(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.leads.List(ctx, string(v.Kind), c)
	if err != nil {
		return nil, err
	}

	columns := append([]stageview.Column{{Key: "id", Label: "ID"}}, v.Columns...)
	name := fmt.Sprintf("leads-%s-%s.%s", v.Kind, s.now().Format("20060102-150405"), format)

	if format == FormatXLSX {
		body, err := renderXLSX(columns, rows)
		if err != nil {
			return nil, fmt.Errorf("render xlsx: %w", err)
		}
		return &Export{
			Filename:    name,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = csvHeader(col.Key)
	}
	records := make([]csvimport.Record, 0, len(rows))
	for _, r := range rows {
		rec := csvimport.Record{}
		for _, col := range columns {
			rec[csvHeader(col.Key)] = cellValue(r, col.Key)
		}
		records = append(records, rec)
	}
	text, err := csvimport.Encode(headers, records)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return &Export{Filename: name, ContentType: "text/csv; charset=utf-8", Body: []byte(text)}, nil
}

func renderXLSX(columns []stageview.Column, rows []models.LeadRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col.Label
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}

	for i, r := range rows {
		values := make([]any, len(columns))
		for j, col := range columns {
			values[j] = xlsxValue(r, col.Key)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// xlsxValue keeps numbers numeric in the sheet.
func xlsxValue(r models.LeadRow, key string) any {
	switch key {
	case "id":
		return r.ID
	case "expected_value":
		if r.ExpectedValue != nil {
			return *r.ExpectedValue
		}
		return ""
	}
	return cellValue(r, key)
}

func cellValue(r models.LeadRow, key string) string {
	switch key {
	case "id":
		return strconv.FormatInt(r.ID, 10)
	case "account_name":
		return r.AccountName
	case "contact_name":
		return deref(r.ContactName)
	case "contact_phone":
		return deref(r.ContactPhone)
	case "industry_name":
		return deref(r.IndustryName)
	case "city_name":
		return deref(r.CityName)
	case "stage_name":
		return r.StageName
	case "status_name":
		return r.StatusName
	case "source_name":
		return deref(r.SourceName)
	case "product_name":
		return deref(r.ProductName)
	case "lob_name":
		return deref(r.LOBName)
	case "generator_name":
		return deref(r.GeneratorName)
	case "data_enrichment_name":
		return deref(r.DataEnrichmentName)
	case "telecaller_name":
		return deref(r.TelecallerName)
	case "bd_name":
		return deref(r.BDName)
	case "last_call_outcome":
		return deref(r.LastCallOutcome)
	case "follow_up_at":
		if r.FollowUpAt != nil {
			return r.FollowUpAt.Format(time.RFC3339)
		}
		return ""
	case "expected_value":
		if r.ExpectedValue != nil {
			return strconv.FormatFloat(*r.ExpectedValue, 'f', 2, 64)
		}
		return ""
	case "created_at":
		return r.CreatedAt.Format(time.RFC3339)
	}
	return ""
}

// importHeaders renames view columns to the lead import's column names so an exported
// CSV can be imported again.
var importHeaders = map[string]string{
	"industry_name": "industry",
	"city_name":     "city",
	"stage_name":    "stage",
	"status_name":   "status",
	"source_name":   "lead_source",
	"product_name":  "product",
}

func csvHeader(key string) string {
	if h, ok := importHeaders[key]; ok {
		return h
	}
	return key
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
