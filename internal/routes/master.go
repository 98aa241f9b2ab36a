package routes

import (
	"github.com/gin-gonic/gin"

	"workbooster/internal/handlers"
)

type MasterRoutes struct {
	handler *handlers.MasterHandler
}

func NewMasterRoutes(handler *handlers.MasterHandler) *MasterRoutes {
	return &MasterRoutes{handler: handler}
}

func (r *MasterRoutes) RegisterRoutes(router *gin.RouterGroup) {
	master := router.Group("/master/:table")
	{
		master.GET("", r.handler.ListItems)
		master.POST("", requireAdmin, r.handler.CreateItem)
		master.PATCH("/:id", requireAdmin, r.handler.UpdateItem)
		master.DELETE("/:id", requireAdmin, r.handler.DeleteItem)
	}
}
