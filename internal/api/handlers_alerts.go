// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aetherwatch/internal/alerts"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/models"
)

// Alerts returns recent alert records, newest first. A limit of zero or
// below returns the whole buffer.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	if !h.requireDispatcher(w) {
		return
	}

	limit := getIntParam(r, "limit", 50)
	records := h.dispatcher.Recent(limit)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alerts": records,
			"count":  len(records),
			"total":  h.dispatcher.Len(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// AlertsClear empties the alert log. Notifier channels are unaffected;
// anything already handed to them stays in flight.
func (h *Handler) AlertsClear(w http.ResponseWriter, r *http.Request) {
	if !h.requireDispatcher(w) {
		return
	}

	cleared := h.dispatcher.Len()
	h.dispatcher.Clear()

	logging.Info().Int("cleared", cleared).Msg("Alert log cleared via API")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"cleared": cleared},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// AlertTest emits a test alert through the full dispatch path so operators
// can verify the ring, the websocket feed, and any configured notifier
// channels end to end. The body is optional; an empty POST produces an
// INFO alert that touches no outbound channel.
func (h *Handler) AlertTest(w http.ResponseWriter, r *http.Request) {
	if !h.requireDispatcher(w) {
		return
	}

	var req models.TestAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Error:    apiErr,
			Metadata: models.Metadata{Timestamp: time.Now()},
		})
		return
	}

	level := req.Level
	if level == "" {
		level = models.AlertInfo
	}
	message := req.Message
	if message == "" {
		message = "Test alert triggered from the dashboard"
	}

	rec := h.dispatcher.DispatchWith(r.Context(), level, "System Test", message,
		map[string]interface{}{"origin": "api"},
		alerts.DispatchOpts{Email: req.Email, SMS: req.SMS})

	logging.Info().
		Str("level", string(rec.Level)).
		Bool("email", req.Email).
		Bool("sms", req.SMS).
		Msg("Test alert dispatched")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status:   "success",
		Data:     rec,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
