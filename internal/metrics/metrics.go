// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the acquisition pipeline:
// - Source fetch attempts, failures, and fallback depth
// - Cache efficiency per data domain
// - Alert dispatch volume and channel failures
// - Object detector latency and lifecycle
// - API endpoint latency and throughput
// - WebSocket connections

var (
	// Fetch Metrics
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_attempts_total",
			Help: "Total number of fetch attempts per source and provider",
		},
		[]string{"source", "provider"}, // source: "aviation", "camera", "satellite"
	)

	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_failures_total",
			Help: "Total number of failed fetch attempts per source and provider",
		},
		[]string{"source", "provider"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Duration of fetch operations in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15}, // Fetches are bounded by per-request timeouts
		},
		[]string{"source", "provider"},
	)

	MockFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mock_fallbacks_total",
			Help: "Total number of fetches that fell through to the synthetic generator",
		},
		[]string{"source"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"}, // "aviation", "satellite", "camera", "detection"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or LRU pressure)",
		},
		[]string{"cache"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	// Alert Metrics
	AlertsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_dispatched_total",
			Help: "Total number of alerts appended to the alert log",
		},
		[]string{"level", "source"},
	)

	AlertChannelSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_channel_sends_total",
			Help: "Total number of alert channel deliveries",
		},
		[]string{"channel", "result"}, // result: "success", "failure"
	)

	// Detector Metrics
	DetectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "detection_inference_duration_seconds",
			Help:    "Duration of object detection inference in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detections_total",
			Help: "Total number of detection calls by outcome",
		},
		[]string{"outcome"}, // "live", "passthrough", "error"
	)

	DetectorState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "detector_state",
			Help: "Object detector lifecycle state (0=unloaded, 1=loading, 2=ready, 3=load_failed)",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Poller Metrics
	PollCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_cycles_total",
			Help: "Total number of completed refresh cycles",
		},
	)

	PollLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poll_last_success_timestamp",
			Help: "Unix timestamp of the last successful refresh cycle",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordFetch records one provider fetch attempt with its duration and outcome.
func RecordFetch(source, provider string, duration time.Duration, err error) {
	FetchAttempts.WithLabelValues(source, provider).Inc()
	FetchDuration.WithLabelValues(source, provider).Observe(duration.Seconds())
	if err != nil {
		FetchFailures.WithLabelValues(source, provider).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDetection records a detection call outcome and, for live calls, the
// inference duration.
func RecordDetection(outcome string, duration time.Duration) {
	DetectionsTotal.WithLabelValues(outcome).Inc()
	if outcome == "live" {
		DetectionDuration.Observe(duration.Seconds())
	}
}

// RecordAlert records an alert append.
func RecordAlert(level, source string) {
	AlertsDispatched.WithLabelValues(level, source).Inc()
}

// RecordChannelSend records an alert channel delivery attempt.
func RecordChannelSend(channel string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AlertChannelSends.WithLabelValues(channel, result).Inc()
}
