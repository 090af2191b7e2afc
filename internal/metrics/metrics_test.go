package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	PipelineRuns.Inc()
	StageErrors.WithLabelValues("graph").Inc()
	IncAPIRetry("/test")
	IncFiltered("min_followers")
	ObserveStageDuration("extract", time.Now().Add(-1500*time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"flocks_pipeline_runs_total",
		"flocks_stage_errors_total",
		"flocks_stage_duration_seconds",
		"flocks_api_retries_total",
		"flocks_filtered_accounts_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
