// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// ComposeStatus builds the component health snapshot served by the status
// endpoint. The poller reuses it for periodic websocket status broadcasts,
// so it must stay cheap: every read below is a counter or a mutex-guarded
// copy, never a network call.
func (h *Handler) ComposeStatus() models.SystemStatus {
	status := models.SystemStatus{
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
		Caches: make(map[string]models.CacheStats, len(h.caches)),
	}

	if h.detector != nil {
		status.Detector = h.detector.Status()
	} else {
		status.Detector = models.DetectorStatus{State: "disabled"}
	}

	if h.cameras != nil {
		status.Cameras = h.cameras.Statuses()
	}

	for _, c := range h.caches {
		if c == nil {
			continue
		}
		s := c.Stats()
		status.Caches[c.Name()] = models.CacheStats{
			Hits:      s.Hits,
			Misses:    s.Misses,
			Evictions: s.Evictions,
			Keys:      s.Keys,
			HitRate:   c.HitRate(),
		}
	}

	if h.aviation != nil {
		status.Providers = append(status.Providers, h.aviation.ProviderStatuses()...)
	}
	if h.satellite != nil {
		status.Providers = append(status.Providers, h.satellite.Status())
	}

	if h.dispatcher != nil {
		status.AlertsLen = h.dispatcher.Len()
	}

	return status
}

// Status reports uptime, cache counters, camera reachability, detector
// state, and provider availability in one response.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.ComposeStatus(),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
