package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PipelineRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flocks_pipeline_runs_total",
		Help: "Total discovery pipeline runs",
	})
	StageErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flocks_stage_errors_total",
		Help: "Total fatal stage errors",
	}, []string{"stage"})
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flocks_stage_duration_seconds",
		Help:    "Stage duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flocks_api_retries_total",
		Help: "Total provider retry attempts",
	}, []string{"endpoint"})
	RateLimitWaits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flocks_rate_limit_waits_total",
		Help: "Total waits imposed by the provider rate window",
	})
	FilteredAccounts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flocks_filtered_accounts_total",
		Help: "Discovered accounts rejected by quality filters",
	}, []string{"reason"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flocks_command_runs_total",
		Help: "Total CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flocks_command_errors_total",
		Help: "Total CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(PipelineRuns, StageErrors, StageDuration, APIRetries,
		RateLimitWaits, FilteredAccounts, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveStageDuration records a stage duration.
func ObserveStageDuration(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

// IncFiltered increments the filter counter for a rejection reason.
func IncFiltered(reason string) { FilteredAccounts.WithLabelValues(reason).Inc() }

// IncCommandRun increments the invocation counter for a CLI command.
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

// IncCommandError increments the failure counter for a CLI command.
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
