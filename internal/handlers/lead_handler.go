package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"workbooster/internal/apperrors"
	"workbooster/internal/responses"
	"workbooster/internal/services"
	"workbooster/internal/stageview"
	"workbooster/internal/utils"
)

const maxImportBytes = 10 << 20

type LeadHandler struct {
	leadService     *services.LeadService
	importService   *services.ImportService
	exportService   *services.ExportService
	telecallService *services.TelecallService
}

func NewLeadHandler(leads *services.LeadService, imports *services.ImportService, exports *services.ExportService, telecalls *services.TelecallService) *LeadHandler {
	return &LeadHandler{leadService: leads, importService: imports, exportService: exports, telecallService: telecalls}
}

// criteria reads the filter and sort state of the lead tables from the query string.
func criteria(c *gin.Context) (stageview.Criteria, error) {
	cr := stageview.Criteria{
		Search:  trimmedQuery(c, "search"),
		Outcome: trimmedQuery(c, "outcome"),
		Sort:    trimmedQuery(c, "sort"),
		Desc:    strings.EqualFold(trimmedQuery(c, "order"), "desc"),
	}
	for name, dst := range map[string]**int64{
		"stage_id":    &cr.StageID,
		"source_id":   &cr.SourceID,
		"industry_id": &cr.IndustryID,
		"lob_id":      &cr.LOBID,
		"city_id":     &cr.CityID,
		"product_id":  &cr.ProductID,
	} {
		id, err := utils.ParseOptionalID(c.Query(name))
		if err != nil {
			return cr, apperrors.Validation("%s must be a positive integer", name)
		}
		*dst = id
	}
	for name, dst := range map[string]**time.Time{"from": &cr.From, "to": &cr.To} {
		v := trimmedQuery(c, name)
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return cr, apperrors.Validation("%s must be YYYY-MM-DD", name)
		}
		*dst = &t
	}
	return cr, nil
}

// ListLeads handles GET /api/leads
func (h *LeadHandler) ListLeads(c *gin.Context) {
	cr, err := criteria(c)
	if err != nil {
		responses.Error(c, err, "Invalid filters")
		return
	}
	rows, err := h.leadService.List(c.Request.Context(), trimmedQuery(c, "view"), cr)
	if err != nil {
		responses.Error(c, err, "Failed to list leads")
		return
	}
	responses.Success(c, http.StatusOK, rows, "Leads retrieved successfully")
}

// ListViews handles GET /api/leads/views
func (h *LeadHandler) ListViews(c *gin.Context) {
	responses.Success(c, http.StatusOK, h.leadService.Views(), "Views retrieved successfully")
}

// GetLead handles GET /api/leads/:id
func (h *LeadHandler) GetLead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lead, err := h.leadService.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve lead")
		return
	}
	responses.Success(c, http.StatusOK, lead, "Lead retrieved successfully")
}

// CreateLead handles POST /api/leads
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req services.LeadRequest
	if !bindJSON(c, &req) {
		return
	}
	lead, err := h.leadService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		responses.Error(c, err, "Failed to create lead")
		return
	}
	responses.Success(c, http.StatusCreated, lead, "Lead created successfully")
}

// UpdateLead handles PUT /api/leads/:id
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.LeadRequest
	if !bindJSON(c, &req) {
		return
	}
	lead, err := h.leadService.Update(c.Request.Context(), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update lead")
		return
	}
	responses.Success(c, http.StatusOK, lead, "Lead updated successfully")
}

// ChangeStage handles PATCH /api/leads/:id/stage
func (h *LeadHandler) ChangeStage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.StageChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	lead, err := h.leadService.ChangeStage(c.Request.Context(), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to change stage")
		return
	}
	responses.Success(c, http.StatusOK, lead, "Stage updated successfully")
}

// DeleteLead handles DELETE /api/leads/:id
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.leadService.Delete(c.Request.Context(), id); err != nil {
		responses.Error(c, err, "Failed to delete lead")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Lead deleted successfully")
}

// ImportLeads handles POST /api/leads/import with either a multipart "file" field or a
// raw text/csv body.
func (h *LeadHandler) ImportLeads(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	var text string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Missing file upload")
			return
		}
		f, err := header.Open()
		if err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Could not read upload")
			return
		}
		defer f.Close()
		body, err := io.ReadAll(f)
		if err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Could not read upload")
			return
		}
		text = string(body)
	} else {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Could not read request body")
			return
		}
		text = string(body)
	}

	res, err := h.importService.Import(c.Request.Context(), actor(c), strings.TrimPrefix(text, "\ufeff"))
	if err != nil {
		responses.Error(c, err, "Failed to import leads")
		return
	}
	msg := fmt.Sprintf("Imported %d of %d row(s)", res.ImportedCount, res.Total)
	if res.Notice != "" {
		msg = res.Notice
	}
	responses.Success(c, http.StatusOK, res, msg)
}

// ExportLeads handles GET /api/leads/export
func (h *LeadHandler) ExportLeads(c *gin.Context) {
	cr, err := criteria(c)
	if err != nil {
		responses.Error(c, err, "Invalid filters")
		return
	}
	out, err := h.exportService.Export(c.Request.Context(), trimmedQuery(c, "view"), trimmedQuery(c, "format"), cr)
	if err != nil {
		responses.Error(c, err, "Failed to export leads")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

// ListTelecalls handles GET /api/leads/:id/telecalls
func (h *LeadHandler) ListTelecalls(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	logs, err := h.telecallService.List(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to list telecalls")
		return
	}
	responses.Success(c, http.StatusOK, logs, "Telecalls retrieved successfully")
}

// LogTelecall handles POST /api/leads/:id/telecalls
func (h *LeadHandler) LogTelecall(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.TelecallRequest
	if !bindJSON(c, &req) {
		return
	}
	log, err := h.telecallService.Log(c.Request.Context(), actor(c), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to log telecall")
		return
	}
	responses.Success(c, http.StatusCreated, log, "Telecall logged successfully")
}

// FollowUps handles GET /api/telecall-logs/follow-ups
func (h *LeadHandler) FollowUps(c *gin.Context) {
	items, err := h.telecallService.FollowUps(c.Request.Context(), trimmedQuery(c, "date"))
	if err != nil {
		responses.Error(c, err, "Failed to list follow-ups")
		return
	}
	responses.Success(c, http.StatusOK, items, "Follow-ups retrieved successfully")
}
