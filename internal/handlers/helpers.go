package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"workbooster/internal/middlewares"
	"workbooster/internal/models"
	"workbooster/internal/responses"
	"workbooster/internal/utils"
	"workbooster/internal/validation"
)

// bindJSON decodes and validates the body, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		responses.Fail(c, http.StatusBadRequest, validation.Translate(err), "Invalid request body")
		return false
	}
	return true
}

// pathID parses a positive numeric path parameter, answering 400 itself on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryID parses an optional numeric query parameter.
func queryID(c *gin.Context, name string) (*int64, bool) {
	id, err := utils.ParseOptionalID(c.Query(name))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid "+name)
		return nil, false
	}
	return id, true
}

func actor(c *gin.Context) *models.Session {
	return middlewares.Session(c)
}

func trimmedQuery(c *gin.Context, name string) string {
	return strings.TrimSpace(c.Query(name))
}
