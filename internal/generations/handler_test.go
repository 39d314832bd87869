package generations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/generation"
)

func setupHistoryRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryRepo(10))
	svc.Now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api"))
	return router, svc
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRecordGenerationAndList(t *testing.T) {
	router, svc := setupHistoryRouter(t)
	started := time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC)

	results := []generation.Result{
		{ID: "gen-1", Provider: "stub", Outcome: generation.OutcomeSuccess, Fragments: 4, StartedAt: started, Duration: 1500 * time.Millisecond},
		{ID: "gen-2", Provider: "stub", Outcome: generation.OutcomeParseError, StartedAt: started.Add(time.Minute), Err: errors.New("decode model output: unexpected EOF")},
	}
	for _, res := range results {
		if err := svc.RecordGeneration(context.Background(), res); err != nil {
			t.Fatalf("RecordGeneration: %v", err)
		}
	}

	resp := get(router, "/api/generations?limit=5")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Items []Record `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 || body.Items[0].ID != "gen-2" {
		t.Fatalf("unexpected items %+v", body.Items)
	}
	if body.Items[0].Error == "" || body.Items[1].DurationMs != 1500 {
		t.Fatalf("record fields not carried: %+v", body.Items)
	}
}

func TestListRejectsBadLimit(t *testing.T) {
	router, _ := setupHistoryRouter(t)
	if resp := get(router, "/api/generations?limit=abc"); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStatsCountsWindow(t *testing.T) {
	router, svc := setupHistoryRouter(t)
	now := svc.Now()
	for i, res := range []generation.Result{
		{ID: "a", Outcome: generation.OutcomeSuccess, StartedAt: now.Add(-time.Hour)},
		{ID: "b", Outcome: generation.OutcomeTimeout, StartedAt: now.Add(-2 * time.Hour)},
		{ID: "c", Outcome: generation.OutcomeSuccess, StartedAt: now.Add(-72 * time.Hour)},
	} {
		if err := svc.RecordGeneration(context.Background(), res); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	resp := get(router, "/api/generations/stats?since=24h")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 2 || stats.ByOutcome["success"] != 1 || stats.ByOutcome["timeout"] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestStatsRejectsBadWindow(t *testing.T) {
	router, _ := setupHistoryRouter(t)
	for _, q := range []string{"yesterday", "-1h", "10000h"} {
		if resp := get(router, "/api/generations/stats?since="+q); resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %d", q, resp.Code)
		}
	}
}
