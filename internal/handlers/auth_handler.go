package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workbooster/internal/responses"
	"workbooster/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to login")
		return
	}
	responses.Success(c, http.StatusOK, res, "Logged in successfully")
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), actor(c)); err != nil {
		responses.Error(c, err, "Failed to logout")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Logged out successfully")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), actor(c))
	if err != nil {
		responses.Error(c, err, "Failed to retrieve user")
		return
	}
	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}
