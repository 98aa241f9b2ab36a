package routes

import (
	"github.com/gin-gonic/gin"

	"workbooster/internal/handlers"
)

type DashboardRoutes struct {
	handler *handlers.DashboardHandler
}

func NewDashboardRoutes(handler *handlers.DashboardHandler) *DashboardRoutes {
	return &DashboardRoutes{handler: handler}
}

func (r *DashboardRoutes) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard/summary", r.handler.Summary)
}
