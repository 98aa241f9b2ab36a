package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbooster/internal/handlers"
	"workbooster/internal/memstore"
	"workbooster/internal/metrics"
	"workbooster/internal/middlewares"
	"workbooster/internal/models"
	"workbooster/internal/repositories"
	"workbooster/internal/services"
	"workbooster/internal/utils"
	"workbooster/internal/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.UseWithGin()
	os.Exit(m.Run())
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testAPI struct {
	router     *gin.Engine
	db         *memstore.DB
	tokens     *utils.TokenIssuer
	admin      string
	telecaller string
	redisDown  bool
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := memstore.New()
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)
	db.Users[1].PasswordHash = hash

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := repositories.NewRedisRepository(client)

	tokens, err := utils.NewTokenIssuer("routes-test-secret", time.Hour)
	require.NoError(t, err)

	m := metrics.New()
	users := memstore.Users{DB: db}
	accounts := services.NewAccountService(memstore.Accounts{DB: db}, users, "IN")
	leads := services.NewLeadService(memstore.Leads{DB: db}, memstore.Accounts{DB: db}, memstore.Lookups{DB: db}, users, m)
	auth := services.NewAuthService(users, cache, tokens)

	api := &testAPI{db: db, tokens: tokens}
	health := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": pingFunc(func(context.Context) error { return nil }),
		"redis": pingFunc(func(context.Context) error {
			if api.redisDown {
				return errors.New("connection refused")
			}
			return nil
		}),
	})

	router := gin.New()
	router.Use(m.Middleware())
	RegisterRoutes(router, Handlers{
		Auth:     handlers.NewAuthHandler(auth),
		Users:    handlers.NewUserHandler(services.NewUserService(users)),
		Accounts: handlers.NewAccountHandler(accounts, services.NewMeetingService(memstore.Meetings{DB: db}, memstore.Accounts{DB: db}, memstore.Leads{DB: db})),
		Leads: handlers.NewLeadHandler(
			leads,
			services.NewImportService(accounts, leads, memstore.Lookups{DB: db}, m, 0),
			services.NewExportService(leads),
			services.NewTelecallService(memstore.Calls{DB: db}, memstore.Leads{DB: db}, m),
		),
		Masters:   handlers.NewMasterHandler(services.NewMasterService(memstore.Lookups{DB: db}, users, cache)),
		Dashboard: handlers.NewDashboardHandler(services.NewDashboardService(memstore.Dashboard{DB: db}, memstore.Calls{DB: db})),
		Health:    health,
		Metrics:   m.Handler(),
	}, middlewares.Authenticate(auth))

	api.router = router
	api.admin = api.token(t, 1, models.RoleAdmin)
	api.telecaller = api.token(t, 2, models.RoleTelecaller)
	return api
}

func (a *testAPI) token(t *testing.T, userID int64, role string) string {
	t.Helper()
	token, _, err := a.tokens.Issue(userID, role)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if _, ok := body.(string); ok {
		req.Header.Set("Content-Type", "text/csv")
	} else if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func TestHealthReportsDependencies(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	api.redisDown = true
	w = api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", decode(t, w, nil).Status)
}

func TestProtectedRoutesRejectMissingOrMalformedTokens(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			api.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestLoginMeLogout(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ADMIN@example.com", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login services.LoginResponse
	decode(t, w, &login)
	require.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "Bearer", login.TokenType)

	w = api.do(http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, w, &me)
	assert.Equal(t, "Admin", me.Name)
	assert.NotContains(t, w.Body.String(), "password")

	w = api.do(http.MethodPost, "/api/auth/logout", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMasterWritesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]string{"name": "Retail"}

	w := api.do(http.MethodPost, "/api/master/industries", api.telecaller, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/master/industries", api.admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// reads stay open to every role
	w = api.do(http.MethodGet, "/api/master/industries", api.telecaller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.MasterItem
	decode(t, w, &items)
	assert.Len(t, items, 2)

	w = api.do(http.MethodGet, "/api/master/planets", api.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateAccountNameIsRejected(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/accounts", api.admin, map[string]any{"account_name": "Acme Corp"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/accounts", api.admin, map[string]any{"account_name": "  acme corp "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, api.db.Accounts, 1)

	w = api.do(http.MethodGet, "/api/accounts/check-duplicate?account_name=ACME%20CORP", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"account_name_exists":true`)
}

func TestDeleteAccountWithLeadsIsRejected(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/accounts", api.admin, map[string]any{"account_name": "Globex"})
	require.Equal(t, http.StatusCreated, w.Code)
	var account models.Account
	decode(t, w, &account)

	w = api.do(http.MethodPost, "/api/leads", api.admin, map[string]any{"account_id": account.ID, "stage_id": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodDelete, "/api/accounts/"+itoa(account.ID), api.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, api.db.Accounts, account.ID)
	assert.Equal(t, "Globex", api.db.Accounts[account.ID].AccountName)
}

func TestLeadStageChangeResetsStatus(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/accounts", api.admin, map[string]any{"account_name": "Initech"})
	require.Equal(t, http.StatusCreated, w.Code)
	var account models.Account
	decode(t, w, &account)

	w = api.do(http.MethodPost, "/api/leads", api.admin, map[string]any{"account_id": account.ID, "stage_id": 1, "status_id": 12})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var lead models.LeadRow
	decode(t, w, &lead)
	assert.Equal(t, int64(12), lead.StatusID)

	w = api.do(http.MethodPut, "/api/leads/"+itoa(lead.ID), api.admin, map[string]any{"account_id": account.ID, "stage_id": 2, "status_id": 12})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &lead)
	assert.Equal(t, int64(2), lead.StageID)
	assert.Equal(t, int64(21), lead.StatusID)
}

func TestStaticLeadRoutesTakePrecedence(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/leads/views", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/leads/stages", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stages []models.Stage
	decode(t, w, &stages)
	assert.Len(t, stages, len(memstore.StageNames))

	w = api.do(http.MethodGet, "/api/leads/lead-sources", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/leads/abc", api.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/leads/404", api.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportThenExport(t *testing.T) {
	api := newTestAPI(t)

	csv := "\ufeffaccount_name,stage,contact_name\nAcme,Telecalling,Ravi\n,Demo,\n"
	w := api.do(http.MethodPost, "/api/leads/import", api.admin, csv)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res services.ImportResult
	env := decode(t, w, &res)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.ImportedCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, "Imported 1 of 2 row(s)", env.Message)

	w = api.do(http.MethodPost, "/api/leads/import", api.admin, "account_name\n")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.NothingToImport, decode(t, w, nil).Message)

	w = api.do(http.MethodGet, "/api/leads/export?view=telecalling&format=csv", api.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="leads-telecalling-`)
	assert.Contains(t, w.Body.String(), "Acme")

	w = api.do(http.MethodGet, "/api/leads/export?format=pdf", api.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestsAreCounted(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodGet, "/api/leads/views", api.admin, nil)

	w := api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "workbooster_http_requests_total")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestUserAdminAndDashboard(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]string{"name": "Bina", "email": "bina@example.com", "password": "long-enough", "role": "bd"}

	w := api.do(http.MethodPost, "/api/users", api.telecaller, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/users", api.admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/users", api.telecaller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []models.User
	decode(t, w, &users)
	assert.Len(t, users, 4)

	w = api.do(http.MethodGet, "/api/dashboard/summary", api.telecaller, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary models.DashboardSummary
	decode(t, w, &summary)
	assert.Len(t, summary.StageCounts, len(memstore.StageNames))
	assert.Len(t, summary.UserStats, 3)
}
