package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workbooster/internal/models"
	"workbooster/internal/responses"
	"workbooster/internal/services"
)

// LookupSlugs are served under /api/leads/{slug}.
func LookupSlugs() []string {
	slugs := []string{"users", "stages", "statuses"}
	for _, t := range models.MasterTables {
		slugs = append(slugs, t.Slug)
	}
	return slugs
}

type MasterHandler struct {
	masterService *services.MasterService
}

func NewMasterHandler(masterService *services.MasterService) *MasterHandler {
	return &MasterHandler{masterService: masterService}
}

// Lookup handles GET /api/leads/{slug} for one slug.
func (h *MasterHandler) Lookup(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		stageID, ok := queryID(c, "stage_id")
		if !ok {
			return
		}
		industryID, ok := queryID(c, "industry_id")
		if !ok {
			return
		}
		items, err := h.masterService.Lookup(c.Request.Context(), slug, services.LookupFilter{StageID: stageID, IndustryID: industryID})
		if err != nil {
			responses.Error(c, err, "Failed to load "+slug)
			return
		}
		responses.Success(c, http.StatusOK, items, "")
	}
}

// ListItems handles GET /api/master/:table
func (h *MasterHandler) ListItems(c *gin.Context) {
	industryID, ok := queryID(c, "industry_id")
	if !ok {
		return
	}
	items, err := h.masterService.List(c.Request.Context(), c.Param("table"), industryID)
	if err != nil {
		responses.Error(c, err, "Failed to list items")
		return
	}
	responses.Success(c, http.StatusOK, items, "Items retrieved successfully")
}

// CreateItem handles POST /api/master/:table (admin only)
func (h *MasterHandler) CreateItem(c *gin.Context) {
	var req services.MasterItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.masterService.Create(c.Request.Context(), c.Param("table"), req)
	if err != nil {
		responses.Error(c, err, "Failed to create item")
		return
	}
	responses.Success(c, http.StatusCreated, item, "Item created successfully")
}

// UpdateItem handles PATCH /api/master/:table/:id (admin only)
func (h *MasterHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.MasterItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.masterService.Update(c.Request.Context(), c.Param("table"), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update item")
		return
	}
	responses.Success(c, http.StatusOK, item, "Item updated successfully")
}

// DeleteItem handles DELETE /api/master/:table/:id (admin only)
func (h *MasterHandler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.masterService.Delete(c.Request.Context(), c.Param("table"), id); err != nil {
		responses.Error(c, err, "Failed to delete item")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Item deleted successfully")
}
