// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/aetherwatch/internal/anomaly"
	"github.com/tomtom215/aetherwatch/internal/models"
)

// resolveBBox parses the bbox query parameter, falling back to the
// configured default region when the parameter is absent.
func (h *Handler) resolveBBox(r *http.Request) (models.BoundingBox, error) {
	raw := r.URL.Query().Get("bbox")
	if raw == "" {
		raw = h.config.Aviation.DefaultBBox
	}
	return models.ParseBoundingBox(raw)
}

// Aircraft returns the current aircraft snapshot for a bounding box.
//
// Method: GET
// Path: /api/v1/aircraft?bbox=west,south,east,north
//
// Response:
//   - 200: Snapshot retrieved (live or simulated, see is_live)
//   - 400: Malformed bbox parameter
//   - 503: Aviation fetcher not available
//
// The snapshot is served from the aviation cache when fresh; a cache miss
// walks the provider chain and falls back to simulated traffic, so this
// endpoint only fails when the request context dies.
func (h *Handler) Aircraft(w http.ResponseWriter, r *http.Request) {
	if !h.requireAviation(w) {
		return
	}

	bbox, err := h.resolveBBox(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid bbox parameter: "+err.Error(), nil)
		return
	}

	start := time.Now()
	snap, err := h.aviation.Snapshot(r.Context(), bbox)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "FETCH_ERROR", "Aircraft fetch aborted", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   snap,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// AircraftAnomalies returns the emergency-squawk anomalies present in the
// current snapshot.
//
// Method: GET
// Path: /api/v1/aircraft/anomalies?bbox=west,south,east,north
//
// The squawk rule is checked directly against the cached snapshot without
// going through the engine's dispatch path, so reading this endpoint never
// raises duplicate alerts. The poller owns alerting.
func (h *Handler) AircraftAnomalies(w http.ResponseWriter, r *http.Request) {
	if !h.requireAviation(w) {
		return
	}
	if h.engine == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Anomaly engine not available", nil)
		return
	}

	bbox, err := h.resolveBBox(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid bbox parameter: "+err.Error(), nil)
		return
	}

	start := time.Now()
	snap, err := h.aviation.Snapshot(r.Context(), bbox)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "FETCH_ERROR", "Aircraft fetch aborted", err)
		return
	}

	records := []models.AnomalyRecord{}
	if rule, ok := h.engine.Rule(anomaly.RuleTypeEmergencySquawk); ok && rule.Enabled() {
		recs, err := rule.Check(r.Context(), anomaly.AircraftEvent(snap.Aircraft, snap.FetchedAt))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Anomaly check failed", err)
			return
		}
		if recs != nil {
			records = recs
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"anomalies":  records,
			"count":      len(records),
			"is_live":    snap.IsLive,
			"fetched_at": snap.FetchedAt,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
