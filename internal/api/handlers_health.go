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

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK whenever the process is serving HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Ready means the pipeline is wired end to end: fetchers, dispatcher and
// WebSocket hub all present. Provider outages do NOT flip readiness; the
// fallback chain keeps serving mock data, which is the designed behavior.
// Detector state is reported but never gates readiness for the same reason.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	aviationWired := h.aviation != nil
	dispatcherWired := h.dispatcher != nil
	hubWired := h.wsHub != nil
	ready := aviationWired && dispatcherWired && hubWired

	detectorReady := false
	if h.detector != nil {
		detectorReady = h.detector.Ready()
	}

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"aviation_wired":   aviationWired,
			"dispatcher_wired": dispatcherWired,
			"websocket_wired":  hubWired,
			"detector_ready":   detectorReady,
			"ready_to_serve":   ready,
			"uptime":           time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
