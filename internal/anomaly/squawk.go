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

// emergencySquawks maps the reserved transponder codes to their
// standard meaning.
var emergencySquawks = map[string]string{
	"7700": "General Emergency",
	"7600": "Radio Failure",
	"7500": "Hijacking",
}

// EmergencySquawkRule flags aircraft transmitting a reserved emergency
// transponder code: one CRITICAL record per matching aircraft, nothing
// for any other code.
type EmergencySquawkRule struct {
	mu      sync.RWMutex
	enabled bool
}

// NewEmergencySquawkRule creates the rule, enabled.
func NewEmergencySquawkRule() *EmergencySquawkRule {
	return &EmergencySquawkRule{enabled: true}
}

// Type returns the rule identifier.
func (r *EmergencySquawkRule) Type() RuleType { return RuleTypeEmergencySquawk }

// Check scans the batch for emergency squawks.
func (r *EmergencySquawkRule) Check(_ context.Context, event *Event) ([]models.AnomalyRecord, error) {
	var records []models.AnomalyRecord
	for i := range event.Aircraft {
		ac := &event.Aircraft[i]
		squawk := strings.TrimSpace(ac.Squawk)
		label, ok := emergencySquawks[squawk]
		if !ok {
			continue
		}
		records = append(records, models.AnomalyRecord{
			ICAO24:    ac.ICAO24,
			Callsign:  strings.TrimSpace(ac.Callsign),
			Squawk:    squawk,
			Label:     label,
			Latitude:  ac.Latitude,
			Longitude: ac.Longitude,
			Severity:  models.AlertCritical,
			Message:   fmt.Sprintf("%s squawking %s (%s)", aircraftIdent(ac), squawk, label),
		})
	}
	return records, nil
}

// Enabled reports whether the rule evaluates events.
func (r *EmergencySquawkRule) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled enables or disables the rule.
func (r *EmergencySquawkRule) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}
