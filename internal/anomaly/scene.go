// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package anomaly

import (
	"context"
	"sync"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// SceneAnomalyRule relays the anomalies the detector derived from a
// frame's detections, one ANOMALY record per finding.
type SceneAnomalyRule struct {
	mu      sync.RWMutex
	enabled bool
}

// NewSceneAnomalyRule creates the rule, enabled.
func NewSceneAnomalyRule() *SceneAnomalyRule {
	return &SceneAnomalyRule{enabled: true}
}

// Type returns the rule identifier.
func (r *SceneAnomalyRule) Type() RuleType { return RuleTypeSceneAnomaly }

// Check converts each derived anomaly into a record. A passthrough
// result carries no anomalies, so it produces nothing.
func (r *SceneAnomalyRule) Check(_ context.Context, event *Event) ([]models.AnomalyRecord, error) {
	if event.Detections == nil {
		return nil, nil
	}

	var records []models.AnomalyRecord
	for _, msg := range event.Detections.Anomalies {
		if msg == "" {
			continue
		}
		records = append(records, models.AnomalyRecord{
			Label:    "Scene Anomaly",
			Severity: models.AlertAnomaly,
			Message:  msg,
		})
	}
	return records, nil
}

// Enabled reports whether the rule evaluates events.
func (r *SceneAnomalyRule) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled enables or disables the rule.
func (r *SceneAnomalyRule) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}
