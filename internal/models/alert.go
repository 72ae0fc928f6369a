// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertLevel classifies alert log entries.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
	AlertAnomaly  AlertLevel = "ANOMALY"
)

// Valid reports whether the level is one of the defined constants.
func (l AlertLevel) Valid() bool {
	switch l {
	case AlertInfo, AlertWarning, AlertCritical, AlertAnomaly:
		return true
	default:
		return false
	}
}

// AlertRecord is one entry in the bounded alert log. Appended once by the
// dispatcher, then read-only.
type AlertRecord struct {
	ID        uuid.UUID              `json:"id"`
	Level     AlertLevel             `json:"level"`
	Source    string                 `json:"source"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// TestAlertRequest is the optional payload for the alert test endpoint.
// An empty body produces an INFO alert with a canned message.
type TestAlertRequest struct {
	Level   AlertLevel `json:"level" validate:"omitempty,oneof=INFO WARNING CRITICAL ANOMALY"`
	Message string     `json:"message" validate:"max=512"`
	Email   bool       `json:"email"`
	SMS     bool       `json:"sms"`
}

// AnomalyRecord is a single rule violation produced by the anomaly engine
// and consumed exactly once by the alert dispatcher.
type AnomalyRecord struct {
	ICAO24    string     `json:"icao24,omitempty"`
	Callsign  string     `json:"callsign,omitempty"`
	Squawk    string     `json:"squawk,omitempty"`
	Label     string     `json:"label"`
	Latitude  float64    `json:"latitude,omitempty"`
	Longitude float64    `json:"longitude,omitempty"`
	Severity  AlertLevel `json:"severity"`
	Message   string     `json:"message"`
}
