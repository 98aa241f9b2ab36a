package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workbooster/internal/apperrors"
	"workbooster/internal/models"
	"workbooster/internal/utils"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

type AuthService struct {
	users     UserStore
	blacklist TokenBlacklist
	tokens    *utils.TokenIssuer
	now       func() time.Time
}

func NewAuthService(users UserStore, blacklist TokenBlacklist, tokens *utils.TokenIssuer) *AuthService {
	return &AuthService{users: users, blacklist: blacklist, tokens: tokens, now: time.Now}
}

var errBadCredentials = apperrors.Unauthorized("invalid email or password")

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, errBadCredentials
	}

	if err := utils.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, utils.ErrInvalidPassword) || errors.Is(err, utils.ErrInvalidHash) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user,
	}, nil
}

// Authenticate resolves a bearer token into a session. Blacklisted tokens and users that
// were deactivated after the token was issued are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return nil, apperrors.Unauthorized("token has been revoked")
	}

	userID, _ := claims.UserID()
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.Unauthorized("user is no longer active")
	}

	return &models.Session{
		UserID:    user.ID,
		Role:      user.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout blacklists the session's token until it expires.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	return s.blacklist.Blacklist(ctx, session.TokenID, session.ExpiresAt.Sub(s.now()))
}

func (s *AuthService) Me(ctx context.Context, session *models.Session) (*models.User, error) {
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}
