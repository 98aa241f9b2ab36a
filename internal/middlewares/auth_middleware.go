package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workbooster/internal/apperrors"
	"workbooster/internal/models"
	"workbooster/internal/responses"
)

const sessionKey = "session"

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.Fail(c, http.StatusUnauthorized, nil, "Missing Authorization header")
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			responses.Fail(c, http.StatusUnauthorized, nil, "Invalid Authorization format")
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			if apperrors.Status(err) == http.StatusUnauthorized {
				responses.Fail(c, http.StatusUnauthorized, err, "Invalid or expired token")
				return
			}
			responses.Error(c, err, "Failed to authenticate")
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// Session returns the session stored by Authenticate, or nil.
func Session(c *gin.Context) *models.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*models.Session)
	return s
}

// SetSession is used by tests that bypass token verification.
func SetSession(c *gin.Context, s *models.Session) {
	c.Set(sessionKey, s)
}
