package services

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"workbooster/internal/apperrors"
	"workbooster/internal/models"
	"workbooster/internal/utils"
	"workbooster/internal/validation"
)

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin sales bd telecaller data_enrichment"`
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin sales bd telecaller data_enrichment"`
	IsActive *bool   `json:"is_active"`
}

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user %d not found", id)
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Validation("email is already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor *models.Session, id int64, req UpdateUserRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// an admin cannot lock themselves out
	if actor != nil && actor.UserID == id {
		if req.IsActive != nil && !*req.IsActive {
			return nil, apperrors.Conflict("you cannot deactivate your own account")
		}
		if req.Role != nil && *req.Role != models.RoleAdmin && user.IsAdmin() {
			return nil, apperrors.Conflict("you cannot remove your own admin role")
		}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	found, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("user %d not found", id)
	}
	return user, nil
}

// SeedAdmin creates the admin account or resets its password and role.
func (s *UserService) SeedAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	if err := validation.Var(email, "required,email"); err != nil {
		return nil, apperrors.Validation("admin email %q is invalid", email)
	}
	if len(password) < 8 {
		return nil, apperrors.Validation("admin password must be at least 8 characters")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.users.UpsertByEmail(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert admin: %w", err)
	}
	return user, nil
}

// validateAssignees checks that every non-nil id refers to an existing user.
func validateAssignees(ctx context.Context, users UserStore, fields map[string]*int64) error {
	var ids []int64
	for _, id := range fields {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := users.ExistingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("check assignees: %w", err)
	}
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if id := fields[name]; id != nil && !found[*id] {
			return apperrors.Validation("%s refers to unknown user %d", name, *id)
		}
	}
	return nil
}
