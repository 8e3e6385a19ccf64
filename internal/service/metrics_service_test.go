package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assignment-helper-api/internal/models"
)

func scrape(t *testing.T, m *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetricsStepOutcomes(t *testing.T) {
	m := NewMetricsService()
	m.RecordStepOutcome(stepAnalysis, models.OutcomeOK)
	m.RecordStepOutcome(stepAnalysis, models.OutcomeDegraded)
	m.RecordStepOutcome(stepAnalysis, models.OutcomeDegraded)

	body := scrape(t, m)
	assert.Contains(t, body, `analysis_step_outcomes_total{outcome="degraded",step="analysis"} 2`)
	assert.Contains(t, body, `analysis_step_outcomes_total{outcome="ok",step="analysis"} 1`)
}

func TestMetricsCacheHitRatio(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, "cache_hits_total 2")
	assert.Contains(t, body, "cache_misses_total 1")
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
	m.ObserveLLMRequest("openai", "analysis", time.Second)

	body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/health",status="200"} 1`)
	assert.Contains(t, body, "llm_request_duration_seconds_count")
}

func TestMetricsNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordStepOutcome(stepSearch, models.OutcomeOK)
	m.RecordUpload("pdf", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
