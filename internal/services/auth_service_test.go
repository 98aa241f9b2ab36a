package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbooster/internal/apperrors"
	"workbooster/internal/memstore"
	"workbooster/internal/models"
	"workbooster/internal/repositories"
	"workbooster/internal/utils"
)

func newAuth(t *testing.T) (*AuthService, *UserService, *memstore.DB) {
	t.Helper()
	db := memstore.New()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := utils.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return NewAuthService(memstore.Users{DB: db}, repositories.NewRedisRepository(client), tokens), NewUserService(memstore.Users{DB: db}), db
}

func TestLoginAndLogout(t *testing.T) {
	auth, users, db := newAuth(t)
	ctx := context.Background()

	_, err := users.SeedAdmin(ctx, "Admin", "Boss@Example.com", "correct horse")
	require.NoError(t, err)

	_, err = auth.Login(ctx, LoginRequest{Email: "boss@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	res, err := auth.Login(ctx, LoginRequest{Email: "boss@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
	assert.NotNil(t, db.Users[res.User.ID].LastLoginAt)

	session, err := auth.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.True(t, session.IsAdmin())

	me, err := auth.Me(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "boss@example.com", me.Email)

	require.NoError(t, auth.Logout(ctx, session))
	_, err = auth.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthenticateRejects(t *testing.T) {
	auth, users, db := newAuth(t)
	ctx := context.Background()

	_, err := auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	u, err := users.Create(ctx, CreateUserRequest{Name: "Tel", Email: "tel@example.com", Password: "password1", Role: models.RoleTelecaller})
	require.NoError(t, err)
	res, err := auth.Login(ctx, LoginRequest{Email: "tel@example.com", Password: "password1"})
	require.NoError(t, err)

	db.Users[u.ID].IsActive = false
	_, err = auth.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = auth.Login(ctx, LoginRequest{Email: "tel@example.com", Password: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUserUpdate(t *testing.T) {
	db := memstore.New()
	users := NewUserService(memstore.Users{DB: db})
	ctx := context.Background()

	_, err := users.Create(ctx, CreateUserRequest{Name: "Dup", Email: "ADMIN@example.com", Password: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	created, err := users.Create(ctx, CreateUserRequest{Name: "Sam", Email: "sam@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSales, created.Role)

	_, err = users.Update(ctx, admin, admin.UserID, UpdateUserRequest{IsActive: ptr(false)})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	_, err = users.Update(ctx, admin, admin.UserID, UpdateUserRequest{Role: ptr(models.RoleSales)})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	updated, err := users.Update(ctx, admin, created.ID, UpdateUserRequest{Role: ptr(models.RoleBD), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleBD, updated.Role)
	assert.False(t, updated.IsActive)

	_, err = users.Update(ctx, admin, created.ID, UpdateUserRequest{Role: ptr("ceo")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = users.Get(ctx, 4242)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
