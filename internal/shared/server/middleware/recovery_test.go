package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecoveryReturnsGenericError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observeLogs(t)

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.POST("/boom", func(c *gin.Context) {
		panic("nil template")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/boom", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if got := resp.Body.String(); got != `{"error":"Error processing your request"}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestRecoveryAfterStreamStartKeepsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observeLogs(t)

	router := gin.New()
	router.Use(Recovery())
	router.POST("/stream", func(c *gin.Context) {
		c.Status(http.StatusOK)
		_, _ = c.Writer.Write([]byte(`{"personalInfo":`))
		c.Writer.Flush()
		panic("relay failed")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/stream", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected committed 200 to stand, got %d", resp.Code)
	}
	if logs.FilterMessage("panic").Len() != 1 {
		t.Fatalf("expected panic to be logged")
	}
}

func TestRequestIDGeneratedWhenMissingOrInvalid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	for _, header := range []string{"", "has space", string(make([]byte, 200))} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if header != "" {
			req.Header.Set("X-Request-Id", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		got := resp.Header().Get("X-Request-Id")
		if len(got) != 36 {
			t.Fatalf("expected generated uuid for %q, got %q", header, got)
		}
		if resp.Body.String() != got {
			t.Fatalf("context id %q does not match header %q", resp.Body.String(), got)
		}
	}
}
