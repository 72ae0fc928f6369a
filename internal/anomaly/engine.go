// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package anomaly

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/models"
)

// AlertSink receives every record the engine produces.
// *alerts.Dispatcher satisfies it.
type AlertSink interface {
	Dispatch(ctx context.Context, level models.AlertLevel, source, message string, details map[string]interface{}) models.AlertRecord
}

// Engine runs registered rules over submitted events and forwards the
// resulting records to the alert sink.
type Engine struct {
	mu    sync.RWMutex
	rules map[RuleType]Rule
	order []RuleType
	sink  AlertSink

	countersMu sync.Mutex
	counters   EngineMetrics
}

// RuleMetrics counts one rule's activity.
type RuleMetrics struct {
	EventsChecked   int64      `json:"events_checked"`
	RecordsEmitted  int64      `json:"records_emitted"`
	Errors          int64      `json:"errors"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
}

// EngineMetrics aggregates evaluation counters across all rules.
type EngineMetrics struct {
	EventsProcessed int64                     `json:"events_processed"`
	RecordsEmitted  int64                     `json:"records_emitted"`
	RuleErrors      int64                     `json:"rule_errors"`
	LastProcessedAt time.Time                 `json:"last_processed_at"`
	Rules           map[RuleType]*RuleMetrics `json:"rules"`
}

// NewEngine creates an empty engine dispatching to sink. A nil sink
// keeps evaluation working but drops the alerts.
func NewEngine(sink AlertSink) *Engine {
	return &Engine{
		rules: make(map[RuleType]Rule),
		sink:  sink,
		counters: EngineMetrics{
			Rules: make(map[RuleType]*RuleMetrics),
		},
	}
}

// NewDefaultEngine builds the production rule set: emergency squawk and
// scene relay always on, the envelope rules per configuration.
func NewDefaultEngine(sink AlertSink, cfg config.AnomalyConfig) *Engine {
	e := NewEngine(sink)
	e.Register(NewEmergencySquawkRule())
	e.Register(NewSceneAnomalyRule())

	low := NewLowAltitudeRule(cfg.LowAltitudeFt)
	low.SetEnabled(cfg.LowAltitudeEnabled)
	e.Register(low)

	high := NewHighSpeedRule(cfg.HighSpeedKts)
	high.SetEnabled(cfg.HighSpeedEnabled)
	e.Register(high)

	return e
}

// Register adds a rule. Re-registering a type replaces the previous
// rule but keeps its position in the evaluation order.
func (e *Engine) Register(rule Rule) {
	t := rule.Type()

	e.mu.Lock()
	if _, seen := e.rules[t]; !seen {
		e.order = append(e.order, t)
	}
	e.rules[t] = rule
	e.mu.Unlock()

	e.countersMu.Lock()
	if _, ok := e.counters.Rules[t]; !ok {
		e.counters.Rules[t] = &RuleMetrics{}
	}
	e.countersMu.Unlock()

	logging.Info().Str("rule", string(t)).Bool("enabled", rule.Enabled()).Msg("Registered anomaly rule")
}

// Evaluate runs every enabled rule over the event, dispatches each
// resulting record and returns them all. A failing rule does not stop
// the remaining rules; failures are aggregated into the returned error.
func (e *Engine) Evaluate(ctx context.Context, event *Event) ([]models.AnomalyRecord, error) {
	if event == nil {
		return nil, nil
	}

	var records []models.AnomalyRecord
	var errs []error

	for _, rule := range e.enabledRules() {
		out, err := rule.Check(ctx, event)
		e.note(rule.Type(), len(out), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rule.Type(), err))
			continue
		}
		for _, rec := range out {
			e.dispatch(ctx, rule.Type(), event, rec)
		}
		records = append(records, out...)
	}

	e.countersMu.Lock()
	e.counters.EventsProcessed++
	e.counters.LastProcessedAt = time.Now()
	e.countersMu.Unlock()

	if len(errs) > 0 {
		return records, fmt.Errorf("anomaly rules: %v", errs)
	}
	return records, nil
}

func (e *Engine) enabledRules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Rule, 0, len(e.order))
	for _, t := range e.order {
		if r := e.rules[t]; r != nil && r.Enabled() {
			out = append(out, r)
		}
	}
	return out
}

// note updates per-rule counters after a check.
func (e *Engine) note(t RuleType, emitted int, err error) {
	e.countersMu.Lock()
	defer e.countersMu.Unlock()

	rm, ok := e.counters.Rules[t]
	if !ok {
		rm = &RuleMetrics{}
		e.counters.Rules[t] = rm
	}
	rm.EventsChecked++
	if err != nil {
		rm.Errors++
		e.counters.RuleErrors++
		return
	}
	if emitted > 0 {
		rm.RecordsEmitted += int64(emitted)
		e.counters.RecordsEmitted += int64(emitted)
		now := time.Now()
		rm.LastTriggeredAt = &now
	}
}

func (e *Engine) dispatch(ctx context.Context, t RuleType, event *Event, rec models.AnomalyRecord) {
	if e.sink == nil {
		return
	}
	e.sink.Dispatch(ctx, rec.Severity, dispatchSource(t, event), rec.Message, recordDetails(rec))
}

// dispatchSource picks the alert source: the event's own source when
// set, otherwise a default per rule family.
func dispatchSource(t RuleType, event *Event) string {
	if event.Source != "" {
		return event.Source
	}
	if t == RuleTypeSceneAnomaly {
		return "Object Detection"
	}
	return "Aviation Anomaly"
}

// recordDetails flattens the record's identifying fields for the alert
// payload, omitting empties.
func recordDetails(rec models.AnomalyRecord) map[string]interface{} {
	details := map[string]interface{}{
		"label": rec.Label,
	}
	if rec.ICAO24 != "" {
		details["icao24"] = rec.ICAO24
	}
	if rec.Callsign != "" {
		details["callsign"] = rec.Callsign
	}
	if rec.Squawk != "" {
		details["squawk"] = rec.Squawk
	}
	if rec.Latitude != 0 || rec.Longitude != 0 {
		details["latitude"] = rec.Latitude
		details["longitude"] = rec.Longitude
	}
	return details
}

// Rule returns a registered rule by type.
func (e *Engine) Rule(t RuleType) (Rule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rules[t]
	return r, ok
}

// Rules returns all registered rules in evaluation order.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Rule, 0, len(e.order))
	for _, t := range e.order {
		out = append(out, e.rules[t])
	}
	return out
}

// SetRuleEnabled toggles a single rule.
func (e *Engine) SetRuleEnabled(t RuleType, enabled bool) error {
	rule, ok := e.Rule(t)
	if !ok {
		return fmt.Errorf("rule not registered: %s", t)
	}
	rule.SetEnabled(enabled)
	return nil
}

// Metrics returns a copy of the evaluation counters.
func (e *Engine) Metrics() EngineMetrics {
	e.countersMu.Lock()
	defer e.countersMu.Unlock()

	rules := make(map[RuleType]*RuleMetrics, len(e.counters.Rules))
	for t, rm := range e.counters.Rules {
		cp := *rm
		rules[t] = &cp
	}

	return EngineMetrics{
		EventsProcessed: e.counters.EventsProcessed,
		RecordsEmitted:  e.counters.RecordsEmitted,
		RuleErrors:      e.counters.RuleErrors,
		LastProcessedAt: e.counters.LastProcessedAt,
		Rules:           rules,
	}
}
