// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package anomaly evaluates fetched entities against registered rules and
turns violations into dispatched alerts.

The engine is passive: the poller and the detect endpoint submit events
(an aircraft batch, a frame's detection result) and every enabled rule
inspects the entity kind it understands, emitting zero or more anomaly
records. Records flow to the alert dispatcher, which owns the ring
buffer, the notification channels and the WebSocket broadcast, so the
engine never talks to a consumer directly.

Rules are stateless. Deduplication happens upstream: the poller only
submits aircraft batches whose FetchedAt it has not seen yet, so a
cached batch is scored exactly once per fetch.
*/
package anomaly

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// RuleType identifies a registered rule.
type RuleType string

const (
	// RuleTypeEmergencySquawk flags aircraft transmitting a reserved
	// emergency transponder code.
	RuleTypeEmergencySquawk RuleType = "emergency_squawk"

	// RuleTypeLowAltitude flags airborne aircraft below the altitude floor.
	RuleTypeLowAltitude RuleType = "low_altitude"

	// RuleTypeHighSpeed flags aircraft above the ground speed ceiling.
	RuleTypeHighSpeed RuleType = "high_speed"

	// RuleTypeSceneAnomaly relays anomalies derived from a frame's
	// object detections.
	RuleTypeSceneAnomaly RuleType = "scene_anomaly"
)

// Event is one unit of fetched data submitted for evaluation. Exactly
// one entity field is set; rules skip events carrying an entity kind
// they do not understand.
type Event struct {
	Aircraft   []models.AircraftState
	Detections *models.DetectionResult

	// Source overrides the alert source of any resulting records,
	// e.g. "Camera cam_3". Empty selects a per-rule default.
	Source string

	// Timestamp is when the entities were fetched.
	Timestamp time.Time
}

// AircraftEvent wraps a fetched aircraft batch for evaluation.
func AircraftEvent(batch []models.AircraftState, fetchedAt time.Time) *Event {
	return &Event{Aircraft: batch, Timestamp: fetchedAt}
}

// DetectionEvent wraps a frame's detection result for evaluation.
func DetectionEvent(result *models.DetectionResult, source string) *Event {
	e := &Event{Detections: result, Source: source}
	if result != nil {
		e.Timestamp = result.Timestamp
	}
	return e
}

// Rule evaluates one event and reports every violation it finds.
type Rule interface {
	// Type returns the rule identifier.
	Type() RuleType

	// Check evaluates the event, returning one record per violation.
	Check(ctx context.Context, event *Event) ([]models.AnomalyRecord, error)

	// Enabled reports whether the rule currently evaluates events.
	Enabled() bool

	// SetEnabled enables or disables the rule.
	SetEnabled(enabled bool)
}

// aircraftIdent names an aircraft for alert messages, preferring the
// callsign over the hex address.
func aircraftIdent(ac *models.AircraftState) string {
	if cs := strings.TrimSpace(ac.Callsign); cs != "" {
		return cs
	}
	if ac.ICAO24 != "" {
		return ac.ICAO24
	}
	return "unknown aircraft"
}
