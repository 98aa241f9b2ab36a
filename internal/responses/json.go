package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workbooster/internal/apperrors"
	"workbooster/internal/logger"
)

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status:  "error",
		Message: message,
		Error:   message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(statusCode, resp)
}

// Error maps err onto its HTTP status. Unclassified errors are logged and answered with a
// generic 500 so internals never reach the client.
func Error(c *gin.Context, err error, message string) {
	status := apperrors.Status(err)
	if status >= http.StatusInternalServerError {
		logger.Default().Error(message,
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
		)
		Fail(c, http.StatusInternalServerError, nil, "internal server error")
		return
	}
	Fail(c, status, err, message)
}
