package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workbooster/internal/responses"
	"workbooster/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		responses.Error(c, err, "Failed to list users")
		return
	}
	responses.Success(c, http.StatusOK, users, "Users retrieved successfully")
}

// CreateUser handles POST /api/users (admin only)
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to create user")
		return
	}
	responses.Success(c, http.StatusCreated, user, "User created successfully")
}

// UpdateUser handles PATCH /api/users/:id (admin only)
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update user")
		return
	}
	responses.Success(c, http.StatusOK, user, "User updated successfully")
}
