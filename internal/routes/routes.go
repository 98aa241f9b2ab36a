package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workbooster/internal/handlers"
	"workbooster/internal/middlewares"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Accounts  *handlers.AccountHandler
	Leads     *handlers.LeadHandler
	Masters   *handlers.MasterHandler
	Dashboard *handlers.DashboardHandler
	Health    *handlers.HealthHandler
	Metrics   http.Handler
}

func RegisterRoutes(router *gin.Engine, h Handlers, authenticate gin.HandlerFunc) {
	router.GET("/health", h.Health.Health)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := router.Group("/api")

	NewAuthRoutes(h.Auth, authenticate).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(authenticate)

	NewUserRoutes(h.Users).RegisterRoutes(protected)
	NewAccountRoutes(h.Accounts).RegisterRoutes(protected)
	NewLeadRoutes(h.Leads, h.Masters).RegisterRoutes(protected)
	NewMasterRoutes(h.Masters).RegisterRoutes(protected)
	NewDashboardRoutes(h.Dashboard).RegisterRoutes(protected)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "route not found", "error": "route not found"})
	})
}

var requireAdmin = middlewares.RequireAdmin()
