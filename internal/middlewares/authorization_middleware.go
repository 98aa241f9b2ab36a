package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workbooster/internal/responses"
)

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := Session(c)
		if session == nil {
			responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
			return
		}
		if !session.IsAdmin() {
			responses.Fail(c, http.StatusForbidden, nil, "Access denied. Admin privileges required.")
			return
		}
		c.Next()
	}
}
