// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the acquisition pipeline using the Prometheus client
library, exposing metrics for fetch health, fallback depth, cache efficiency,
alert volume, detector performance, and the HTTP/WebSocket boundary.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8050/metrics

# Available Metrics

Fetch Metrics:
  - fetch_attempts_total: Fetch attempts per upstream (counter)
    Labels: source (aviation, camera, satellite), provider
  - fetch_failures_total: Failed fetch attempts (counter)
    Labels: source, provider
  - fetch_duration_seconds: Fetch latency (histogram)
    Labels: source, provider
  - mock_fallbacks_total: Fetches that fell through to the synthetic
    generator (counter)
    Labels: source

Cache Metrics:
  - cache_hits_total, cache_misses_total, cache_evictions_total (counters)
    Labels: cache (aviation, satellite, camera, detection)
  - cache_entries: Current entry count (gauge)
    Labels: cache

Alert Metrics:
  - alerts_dispatched_total: Alerts appended to the alert log (counter)
    Labels: level, source
  - alert_channel_sends_total: Email/SMS delivery attempts (counter)
    Labels: channel, result (success, failure)

Detector Metrics:
  - detection_inference_duration_seconds: Inference latency, live calls
    only (histogram)
  - detections_total: Detection calls by outcome (counter)
    Labels: outcome (live, passthrough, error)
  - detector_state: Lifecycle state (gauge)
    Values: 0=unloaded, 1=loading, 2=ready, 3=load_failed

API Metrics:
  - api_requests_total: API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint

WebSocket Metrics:
  - websocket_connections: Active connections (gauge)
  - websocket_messages_sent_total: Messages pushed to clients (counter)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_state_transitions_total: State transitions (counter)
    Labels: name, from_state, to_state

Poller Metrics:
  - poll_cycles_total: Completed refresh cycles (counter)
  - poll_last_success_timestamp: Unix time of the last successful cycle (gauge)

System Metrics:
  - app_info: Version and build information (gauge)
    Labels: version, go_version
  - app_uptime_seconds: Process uptime (gauge)

# Usage Example

Metrics are package-level promauto collectors; recording helpers cover the
common call sites:

	import "github.com/tomtom215/aetherwatch/internal/metrics"

	// Provider fetch with duration and outcome
	start := time.Now()
	states, err := provider.Fetch(ctx, bbox)
	metrics.RecordFetch("aviation", provider.Name(), time.Since(start), err)

	// Detection outcome ("live" also observes the latency histogram)
	metrics.RecordDetection("live", elapsed)

	// Alert append and channel delivery
	metrics.RecordAlert(string(record.Level), record.Source)
	metrics.RecordChannelSend("email", sendErr)

The API middleware records api_requests_total and api_request_duration_seconds
through RecordAPIRequest with the chi route pattern as the endpoint label, so
path parameters never explode cardinality.

# Useful PromQL

	# Aviation fetches falling through to the synthetic generator
	rate(mock_fallbacks_total{source="aviation"}[5m])

	# Per-provider failure ratio
	sum by (provider) (rate(fetch_failures_total{source="aviation"}[5m]))
	/
	sum by (provider) (rate(fetch_attempts_total{source="aviation"}[5m]))

	# Detection p95 latency
	histogram_quantile(0.95, rate(detection_inference_duration_seconds_bucket[5m]))

	# Cache hit rate per domain
	sum by (cache) (rate(cache_hits_total[5m]))
	/
	sum by (cache) (rate(cache_hits_total[5m]) + rate(cache_misses_total[5m]))

	# Alert pressure by severity
	sum by (level) (rate(alerts_dispatched_total[15m]))

Example alerting rules:

	- alert: SyntheticDataSustained
	  expr: rate(mock_fallbacks_total[10m]) > 0
	  for: 10m
	  annotations:
	    summary: "{{ $labels.source }} has served only synthetic data for 10m"

	- alert: CircuitBreakerOpen
	  expr: circuit_breaker_state == 2
	  for: 2m
	  annotations:
	    summary: "Circuit breaker open for {{ $labels.name }}"

# Thread Safety

All collectors and recording helpers are safe for concurrent use from multiple
goroutines; the Prometheus client library handles synchronization internally.

# See Also

  - internal/api: HTTP middleware recording API metrics
  - internal/upstream: Circuit breaker state recording
  - internal/alerts: Alert dispatch counters
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
