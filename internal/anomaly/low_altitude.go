// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package anomaly

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// defaultLowAltitudeFt is the alert floor when none is configured.
const defaultLowAltitudeFt = 3000

// LowAltitudeRule flags airborne aircraft below the altitude floor.
// Disabled until explicitly enabled: normal approach and departure
// corridors sit below the floor, so the rule is noisy near airports.
type LowAltitudeRule struct {
	mu      sync.RWMutex
	enabled bool
	floorFt float64
}

// NewLowAltitudeRule creates the rule, disabled. floorFt <= 0 selects
// the default floor.
func NewLowAltitudeRule(floorFt float64) *LowAltitudeRule {
	if floorFt <= 0 {
		floorFt = defaultLowAltitudeFt
	}
	return &LowAltitudeRule{floorFt: floorFt}
}

// Type returns the rule identifier.
func (r *LowAltitudeRule) Type() RuleType { return RuleTypeLowAltitude }

// Check flags each airborne aircraft with a known altitude strictly
// under the floor. Aircraft on the ground or without altitude data are
// skipped.
func (r *LowAltitudeRule) Check(_ context.Context, event *Event) ([]models.AnomalyRecord, error) {
	r.mu.RLock()
	floor := r.floorFt
	r.mu.RUnlock()

	var records []models.AnomalyRecord
	for i := range event.Aircraft {
		ac := &event.Aircraft[i]
		if ac.OnGround || ac.AltitudeFt <= 0 || ac.AltitudeFt >= floor {
			continue
		}
		records = append(records, models.AnomalyRecord{
			ICAO24:    ac.ICAO24,
			Callsign:  strings.TrimSpace(ac.Callsign),
			Label:     "Low Altitude",
			Latitude:  ac.Latitude,
			Longitude: ac.Longitude,
			Severity:  models.AlertWarning,
			Message:   fmt.Sprintf("%s at %.0f ft, below the %.0f ft floor", aircraftIdent(ac), ac.AltitudeFt, floor),
		})
	}
	return records, nil
}

// Enabled reports whether the rule evaluates events.
func (r *LowAltitudeRule) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled enables or disables the rule.
func (r *LowAltitudeRule) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}
