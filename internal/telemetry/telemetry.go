// Package telemetry exposes the service's Prometheus collectors.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_runs_total",
		Help: "Meta sync executions by outcome.",
	}, []string{"status"})

	SyncRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sync_rows_ingested_total",
		Help: "Hourly performance rows written by sync.",
	})

	Analyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analyses_total",
		Help: "Completed campaign analyses by scoring strategy.",
	}, []string{"strategy"})

	Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendations_generated_total",
		Help: "Recommendations generated by type.",
	}, []string{"type"})

	AutoApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommendations_auto_applied_total",
		Help: "Recommendations applied automatically by the worker.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler { return promhttp.Handler() }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware observes request latency per method/path/status.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpDuration.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
