package routes

import (
	"github.com/gin-gonic/gin"

	"workbooster/internal/handlers"
)

type UserRoutes struct {
	userHandler *handlers.UserHandler
}

func NewUserRoutes(userHandler *handlers.UserHandler) *UserRoutes {
	return &UserRoutes{userHandler: userHandler}
}

func (r *UserRoutes) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		// any signed-in user, for the assignee pickers
		users.GET("", r.userHandler.ListUsers)

		// Admin-only routes
		users.POST("", requireAdmin, r.userHandler.CreateUser)
		users.PATCH("/:id", requireAdmin, r.userHandler.UpdateUser)
	}
}
