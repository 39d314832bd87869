package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/generation"
	"resume-builder/internal/generations"
	"resume-builder/internal/preview"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/uploads"
)

const rateLimitGenerate = "GENERATE"

// RouterDeps groups handlers required to build the router.
type RouterDeps struct {
	Config            config.Config
	GenerationHandler *generation.Handler
	HistoryHandler    *generations.Handler
	PreviewHandler    *preview.Handler
	Health            *health.Service
	// RateLimiter is optional; tests inject one with a fixed clock.
	RateLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = uploads.MaxTemplateBytes * 2

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	if deps.GenerationHandler != nil {
		var mw []gin.HandlerFunc
		if deps.Config.RateLimitGeneratePerMin > 0 {
			mw = append(mw, middleware.RateLimit(middleware.RateLimitConfig{
				DefaultGroup: rateLimitGenerate,
				Limiter:      deps.RateLimiter,
				Rules: map[string]middleware.RateLimitRule{
					rateLimitGenerate: middleware.PerMinute(deps.Config.RateLimitGeneratePerMin, deps.Config.RateLimitGenerateBurst),
				},
			}))
		}
		deps.GenerationHandler.RegisterRoutes(api, mw...)
	}
	if deps.PreviewHandler != nil {
		deps.PreviewHandler.RegisterRoutes(api)
	}
	if deps.HistoryHandler != nil {
		deps.HistoryHandler.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
