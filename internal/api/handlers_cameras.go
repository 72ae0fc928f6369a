// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/aetherwatch/internal/anomaly"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/models"
)

// Cameras returns every registered camera merged with its fetch health.
//
// Method: GET
// Path: /api/v1/cameras
//
// Cameras that have never been fetched report a zero-value status; the
// sweep in the poller populates them shortly after startup.
func (h *Handler) Cameras(w http.ResponseWriter, r *http.Request) {
	if !h.requireCameras(w) {
		return
	}

	descs := h.cameras.Cameras()
	statuses := h.cameras.Statuses()

	infos := make([]models.CameraInfo, 0, len(descs))
	for _, desc := range descs {
		infos = append(infos, models.CameraInfo{
			CameraDescriptor: desc,
			Status:           statuses[desc.ID],
		})
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"cameras": infos,
			"count":   len(infos),
			"online":  h.cameras.OnlineCount(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// CameraAdd registers a camera at runtime.
//
// Method: POST
// Path: /api/v1/cameras
//
// Response:
//   - 201: Camera registered
//   - 400: Malformed body or validation failure
//   - 409: Camera id already registered
//
// Runtime cameras share the built-in table's shape and are immediately
// eligible for frame fetches and poller sweeps.
func (h *Handler) CameraAdd(w http.ResponseWriter, r *http.Request) {
	if !h.requireCameras(w) {
		return
	}

	var req models.AddCameraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error:    apiErr,
		})
		return
	}

	if err := h.cameras.Add(req.Descriptor()); err != nil {
		respondError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}

	logging.Info().Str("camera_id", sanitizeLogValue(req.ID)).Str("kind", string(req.Kind)).Msg("Camera registered")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   req.Descriptor(),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// CameraFrame returns one JPEG frame from a camera, optionally running
// object detection on it.
//
// Method: GET
// Path: /api/v1/cameras/{id}/frame?detect=true|false
//
// Response headers:
//   - X-Aetherwatch-Live: whether the frame came from the real feed
//   - X-Aetherwatch-Detections: box count (only when detect=true)
//   - X-Aetherwatch-Backend: inference backend (only when detect=true)
//
// With detect=true the annotated copy is returned and any scene anomalies
// flow to the dispatcher through the rules engine, so a dashboard operator
// clicking "analyze" raises the same alerts the pipeline would.
func (h *Handler) CameraFrame(w http.ResponseWriter, r *http.Request) {
	if !h.requireCameras(w) {
		return
	}
	if h.frames == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Camera fetcher not available", nil)
		return
	}

	id := chi.URLParam(r, "id")
	desc, ok := h.cameras.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown camera id", nil)
		return
	}

	frame, err := h.frames.Frame(r.Context(), desc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "FETCH_ERROR", "Frame fetch aborted", err)
		return
	}

	payload := frame.JPEG

	if getBoolParam(r, "detect", false) && h.detector != nil {
		result := h.detector.Detect(r.Context(), frame.JPEG, desc.ID)

		if h.engine != nil {
			if _, err := h.engine.Evaluate(r.Context(), anomaly.DetectionEvent(&result, "Camera "+desc.ID)); err != nil {
				logging.Error().Err(err).Str("camera_id", sanitizeLogValue(desc.ID)).Msg("Scene anomaly scan failed")
			}
		}

		if len(result.Annotated) > 0 {
			payload = result.Annotated
		}

		w.Header().Set("X-Aetherwatch-Detections", strconv.Itoa(len(result.Detections)))
		backend := result.Backend
		if backend == "" {
			backend = "none"
		}
		w.Header().Set("X-Aetherwatch-Backend", backend)
	}

	respondJPEG(w, payload, frame.Live)
}
