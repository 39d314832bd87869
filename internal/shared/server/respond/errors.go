package respond

import (
	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
)

// ErrorResponse is the error body shared by every JSON endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error logs and sends a JSON error response.
func Error(c *gin.Context, status int, message string) {
	telemetry.Error("http.error", errorFields(c, status, message))
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// Text logs and sends a plain-text error response.
func Text(c *gin.Context, status int, message string) {
	telemetry.Error("http.error", errorFields(c, status, message))
	c.Abort()
	c.String(status, message)
}

func errorFields(c *gin.Context, status int, message string) map[string]any {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if errs := c.Errors.Last(); errs != nil {
		fields["cause"] = errs.Error()
	}
	return fields
}
