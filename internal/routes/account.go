package routes

import (
	"github.com/gin-gonic/gin"

	"workbooster/internal/handlers"
)

type AccountRoutes struct {
	handler *handlers.AccountHandler
}

func NewAccountRoutes(handler *handlers.AccountHandler) *AccountRoutes {
	return &AccountRoutes{handler: handler}
}

func (r *AccountRoutes) RegisterRoutes(router *gin.RouterGroup) {
	accounts := router.Group("/accounts")
	{
		accounts.GET("", r.handler.ListAccounts)
		accounts.GET("/check-duplicate", r.handler.CheckDuplicate)
		accounts.POST("", r.handler.CreateAccount)
		accounts.GET("/:id", r.handler.GetAccount)
		accounts.PUT("/:id", r.handler.UpdateAccount)
		accounts.DELETE("/:id", r.handler.DeleteAccount)

		accounts.GET("/:id/meetings", r.handler.ListMeetings)
		accounts.POST("/:id/meetings", r.handler.CreateMeeting)
	}
}
