package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log.
const (
	GenerationIDKey      = "generationId"
	GenerationOutcomeKey = "generationOutcome"
)

// Logging emits a structured log and a request counter per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.GetString(GenerationIDKey); id != "" {
			fields["generation_id"] = id
		}
		if outcome := c.GetString(GenerationOutcomeKey); outcome != "" {
			fields["generation_outcome"] = outcome
		}
		telemetry.Info("request.complete", fields)
		metrics.ObserveHTTPRequest(c.Request.Method, c.FullPath(), status)
	}
}
