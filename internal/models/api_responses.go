// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package models

import (
	"time"
)

// APIResponse is the standardized envelope returned by every HTTP endpoint.
//
// Status is "success" or "error" ("ready"/"not_ready" on the readiness
// probe); Error is populated only for "error".
// Metadata carries the response timestamp, elapsed handler time, and whether
// the payload was served from a domain cache.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries a machine-readable code plus human-readable message.
//
// Codes in use: VALIDATION_ERROR, NOT_FOUND, CONFLICT, FETCH_ERROR,
// RATE_LIMIT_EXCEEDED, SERVICE_ERROR, SERVICE_UNAVAILABLE, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// AircraftSnapshot is the aviation payload pushed to HTTP and WebSocket
// consumers: one fetch cycle's worth of aircraft plus provenance.
type AircraftSnapshot struct {
	Aircraft  []AircraftState `json:"aircraft"`
	Count     int             `json:"count"`
	IsLive    bool            `json:"is_live"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// CameraInfo merges a camera's static descriptor with its live status for
// the camera list endpoint.
type CameraInfo struct {
	CameraDescriptor
	Status CameraStatus `json:"status"`
}

// CacheStats is the wire shape for one cache's counters.
type CacheStats struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	Keys      int     `json:"keys"`
	HitRate   float64 `json:"hit_rate"`
}

// DetectorStatus reports the object detector's lifecycle state.
type DetectorStatus struct {
	State   string `json:"state"`
	Backend string `json:"backend,omitempty"`
	Ready   bool   `json:"ready"`
}

// ProviderStatus reports one aviation provider's availability.
type ProviderStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// SystemStatus aggregates component health for the status endpoint.
type SystemStatus struct {
	Uptime    string                  `json:"uptime"`
	Detector  DetectorStatus          `json:"detector"`
	Cameras   map[string]CameraStatus `json:"cameras"`
	Caches    map[string]CacheStats   `json:"caches"`
	Providers []ProviderStatus        `json:"providers"`
	AlertsLen int                     `json:"alerts_len"`
}
