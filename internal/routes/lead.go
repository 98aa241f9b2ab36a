package routes

import (
	"github.com/gin-gonic/gin"

	"workbooster/internal/handlers"
)

type LeadRoutes struct {
	handler *handlers.LeadHandler
	lookups *handlers.MasterHandler
}

func NewLeadRoutes(handler *handlers.LeadHandler, lookups *handlers.MasterHandler) *LeadRoutes {
	return &LeadRoutes{handler: handler, lookups: lookups}
}

func (r *LeadRoutes) RegisterRoutes(router *gin.RouterGroup) {
	leads := router.Group("/leads")
	{
		leads.GET("", r.handler.ListLeads)
		leads.POST("", r.handler.CreateLead)

		// static segments take precedence over /:id
		leads.GET("/views", r.handler.ListViews)
		leads.GET("/export", r.handler.ExportLeads)
		leads.POST("/import", r.handler.ImportLeads)
		for _, slug := range handlers.LookupSlugs() {
			leads.GET("/"+slug, r.lookups.Lookup(slug))
		}

		leads.GET("/:id", r.handler.GetLead)
		leads.PUT("/:id", r.handler.UpdateLead)
		leads.DELETE("/:id", r.handler.DeleteLead)
		leads.PATCH("/:id/stage", r.handler.ChangeStage)
		leads.GET("/:id/telecalls", r.handler.ListTelecalls)
		leads.POST("/:id/telecalls", r.handler.LogTelecall)
	}

	router.GET("/telecall-logs/follow-ups", r.handler.FollowUps)
}
