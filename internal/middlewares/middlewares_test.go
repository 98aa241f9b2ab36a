package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"workbooster/internal/apperrors"
	"workbooster/internal/logger"
	"workbooster/internal/models"
)

type fakeAuth map[string]*models.Session

func (f fakeAuth) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if token == "explode" {
		return nil, errors.New("redis down")
	}
	if s, ok := f[token]; ok {
		return s, nil
	}
	return nil, apperrors.Unauthorized("invalid or expired token")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		if s := Session(c); s != nil {
			c.String(http.StatusOK, "user %d", s.UserID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	return r
}

func do(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	auth := fakeAuth{
		"good":  {UserID: 7, Role: models.RoleSales},
		"admin": {UserID: 1, Role: models.RoleAdmin},
	}
	r := newRouter(Authenticate(auth))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "Missing Authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid Authorization format"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "invalid or expired token"},
		{"store failure", "Bearer explode", http.StatusInternalServerError, "internal server error"},
		{"valid", "Bearer good", http.StatusOK, "user 7"},
		{"lowercase scheme", "bearer good", http.StatusOK, "user 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, "Authorization", tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	auth := fakeAuth{
		"good":  {UserID: 7, Role: models.RoleSales},
		"admin": {UserID: 1, Role: models.RoleAdmin},
	}
	r := newRouter(Authenticate(auth), RequireAdmin())

	assert.Equal(t, http.StatusForbidden, do(r, "Authorization", "Bearer good").Code)
	assert.Equal(t, http.StatusOK, do(r, "Authorization", "Bearer admin").Code)

	// without Authenticate in front there is no session
	assert.Equal(t, http.StatusUnauthorized, do(newRouter(RequireAdmin()), "", "").Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(RequestLogger(logger.New("debug", &buf)))

	w := do(r, RequestIDHeader, "req-123")
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-123", line["request_id"])
	assert.Equal(t, "/ping", line["path"])
	assert.Equal(t, float64(http.StatusOK), line["status"])

	w = do(r, "", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	r := newRouter(rl.Middleware())

	assert.Equal(t, http.StatusOK, do(r, "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, "", "").Code)
	w := do(r, "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	rl.sweep(time.Now().Add(time.Hour))
	assert.Empty(t, rl.visitors)
	assert.Equal(t, http.StatusOK, do(r, "", "").Code)
}

func TestRateLimiterCleanupStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	rl := NewRateLimiter(60, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Cleanup(ctx)
		close(done)
	}()
	cancel()
	<-done
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS([]string{"http://localhost:5173"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
