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

// defaultHighSpeedKts is the alert ceiling when none is configured.
const defaultHighSpeedKts = 600

// HighSpeedRule flags aircraft above the ground speed ceiling.
// Disabled until explicitly enabled: reported speed is ground speed,
// and jet stream tailwinds push ordinary airliners past the ceiling.
type HighSpeedRule struct {
	mu         sync.RWMutex
	enabled    bool
	ceilingKts float64
}

// NewHighSpeedRule creates the rule, disabled. ceilingKts <= 0 selects
// the default ceiling.
func NewHighSpeedRule(ceilingKts float64) *HighSpeedRule {
	if ceilingKts <= 0 {
		ceilingKts = defaultHighSpeedKts
	}
	return &HighSpeedRule{ceilingKts: ceilingKts}
}

// Type returns the rule identifier.
func (r *HighSpeedRule) Type() RuleType { return RuleTypeHighSpeed }

// Check flags each aircraft strictly above the ceiling.
func (r *HighSpeedRule) Check(_ context.Context, event *Event) ([]models.AnomalyRecord, error) {
	r.mu.RLock()
	ceiling := r.ceilingKts
	r.mu.RUnlock()

	var records []models.AnomalyRecord
	for i := range event.Aircraft {
		ac := &event.Aircraft[i]
		if ac.VelocityKts <= ceiling {
			continue
		}
		records = append(records, models.AnomalyRecord{
			ICAO24:    ac.ICAO24,
			Callsign:  strings.TrimSpace(ac.Callsign),
			Label:     "High Speed",
			Latitude:  ac.Latitude,
			Longitude: ac.Longitude,
			Severity:  models.AlertWarning,
			Message:   fmt.Sprintf("%s at %.0f kts, above the %.0f kts ceiling", aircraftIdent(ac), ac.VelocityKts, ceiling),
		})
	}
	return records, nil
}

// Enabled reports whether the rule evaluates events.
func (r *HighSpeedRule) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled enables or disables the rule.
func (r *HighSpeedRule) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}
