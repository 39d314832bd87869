package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitGenerateStricterThanDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	groupFor := func(c *gin.Context) string {
		if c.FullPath() == "/api/generate-resume" {
			return "GENERATE"
		}
		return "DEFAULT"
	}

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: groupFor,
		Limiter:  limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT":  {Rate: 5, Burst: 10},
			"GENERATE": PerMinute(6, 2),
		},
	}))
	r.POST("/api/generate-resume", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/api/preview", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		resp := serve(r, http.MethodPost, "/api/generate-resume")
		if resp.Code != http.StatusOK {
			t.Fatalf("generate request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	resp := serve(r, http.MethodPost, "/api/generate-resume")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if got := resp.Header().Get("Retry-After"); got != "10" {
		t.Fatalf("expected Retry-After 10, got %q", got)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["retryAfterMs"] != float64(10000) {
		t.Fatalf("unexpected retryAfterMs: %v", body["retryAfterMs"])
	}

	for i := 0; i < 5; i++ {
		if resp := serve(r, http.MethodPost, "/api/preview"); resp.Code != http.StatusOK {
			t.Fatalf("preview request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	now = now.Add(10 * time.Second)
	if resp := serve(r, http.MethodPost, "/api/generate-resume"); resp.Code != http.StatusOK {
		t.Fatalf("expected refill after 10s, got %d", resp.Code)
	}
}

func TestRateLimitSkipsGroupsWithoutRule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Rules: map[string]RateLimitRule{"GENERATE": {Rate: 0.01, Burst: 1}},
	}))
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		if resp := serve(r, http.MethodGet, "/api/health"); resp.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i+1, resp.Code)
		}
	}
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	for i := 0; i < sweepEvery-1; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d|DEFAULT", i), rule)
	}
	now = now.Add(bucketIdleTTL + time.Second)
	limiter.Allow("fresh|DEFAULT", rule)

	if got := limiter.Len(); got != 1 {
		t.Fatalf("expected idle buckets swept, %d remain", got)
	}
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}
