package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "HTTP request latency by method and path.",
	}, []string{"method", "path"})

	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobs_processed_total",
		Help: "Analysis jobs processed by terminal status and provider.",
	}, []string{"status", "provider"})

	JobProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "job_processing_duration_seconds",
		Help: "End to end job processing time by provider.",
		// Jobs are dominated by model latency, so buckets skew long.
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"provider"})
)
