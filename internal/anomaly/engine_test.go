// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package anomaly

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/models"
)

func TestMain(m *testing.M) {
	logging.SetLogger(logging.NewTestLogger(io.Discard))
	os.Exit(m.Run())
}

type dispatchedAlert struct {
	Level   models.AlertLevel
	Source  string
	Message string
	Details map[string]interface{}
}

// sinkRecorder captures dispatched alerts for assertions.
type sinkRecorder struct {
	alerts []dispatchedAlert
}

func (s *sinkRecorder) Dispatch(_ context.Context, level models.AlertLevel, source, message string, details map[string]interface{}) models.AlertRecord {
	s.alerts = append(s.alerts, dispatchedAlert{Level: level, Source: source, Message: message, Details: details})
	return models.AlertRecord{Level: level, Source: source, Message: message}
}

// failingRule always errors, for aggregation tests.
type failingRule struct {
	enabled bool
}

func (f *failingRule) Type() RuleType { return RuleType("failing") }

func (f *failingRule) Check(_ context.Context, _ *Event) ([]models.AnomalyRecord, error) {
	return nil, errors.New("rule exploded")
}

func (f *failingRule) Enabled() bool           { return f.enabled }
func (f *failingRule) SetEnabled(enabled bool) { f.enabled = enabled }

func cruisingAircraft(icao, callsign, squawk string) models.AircraftState {
	return models.AircraftState{
		ICAO24:      icao,
		Callsign:    callsign,
		Latitude:    47.2,
		Longitude:   -122.4,
		AltitudeFt:  34000,
		VelocityKts: 450,
		Squawk:      squawk,
	}
}

func TestEvaluateDispatchesEachRecord(t *testing.T) {
	sink := &sinkRecorder{}
	e := NewEngine(sink)
	e.Register(NewEmergencySquawkRule())

	batch := []models.AircraftState{
		cruisingAircraft("abc001", "UAL123", "7700"),
		cruisingAircraft("abc002", "DAL456", "1200"),
	}
	records, err := e.Evaluate(context.Background(), AircraftEvent(batch, time.Now()))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if len(sink.alerts) != 1 {
		t.Fatalf("dispatched %d alerts, want 1", len(sink.alerts))
	}
	got := sink.alerts[0]
	if got.Level != models.AlertCritical {
		t.Errorf("Level = %q, want %q", got.Level, models.AlertCritical)
	}
	if got.Source != "Aviation Anomaly" {
		t.Errorf("Source = %q, want %q", got.Source, "Aviation Anomaly")
	}
	if !strings.Contains(got.Message, "UAL123") || !strings.Contains(got.Message, "7700") {
		t.Errorf("Message = %q, want callsign and squawk", got.Message)
	}
	if got.Details["squawk"] != "7700" || got.Details["icao24"] != "abc001" {
		t.Errorf("Details = %v, want squawk and icao24", got.Details)
	}
}

func TestEvaluateSourceOverride(t *testing.T) {
	sink := &sinkRecorder{}
	e := NewEngine(sink)
	e.Register(NewSceneAnomalyRule())

	result := &models.DetectionResult{
		Anomalies: []string{"Large crowd detected: 12 people in frame"},
		IsLive:    true,
		Timestamp: time.Now(),
	}

	if _, err := e.Evaluate(context.Background(), DetectionEvent(result, "Camera cam_3")); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if _, err := e.Evaluate(context.Background(), DetectionEvent(result, "")); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if len(sink.alerts) != 2 {
		t.Fatalf("dispatched %d alerts, want 2", len(sink.alerts))
	}
	if sink.alerts[0].Source != "Camera cam_3" {
		t.Errorf("override Source = %q, want %q", sink.alerts[0].Source, "Camera cam_3")
	}
	if sink.alerts[1].Source != "Object Detection" {
		t.Errorf("default Source = %q, want %q", sink.alerts[1].Source, "Object Detection")
	}
	if sink.alerts[0].Level != models.AlertAnomaly {
		t.Errorf("Level = %q, want %q", sink.alerts[0].Level, models.AlertAnomaly)
	}
}

func TestEvaluateSkipsDisabledRules(t *testing.T) {
	sink := &sinkRecorder{}
	e := NewEngine(sink)
	e.Register(NewEmergencySquawkRule())

	if err := e.SetRuleEnabled(RuleTypeEmergencySquawk, false); err != nil {
		t.Fatalf("SetRuleEnabled() error = %v", err)
	}

	batch := []models.AircraftState{cruisingAircraft("abc001", "UAL123", "7700")}
	records, err := e.Evaluate(context.Background(), AircraftEvent(batch, time.Now()))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(records) != 0 || len(sink.alerts) != 0 {
		t.Fatalf("disabled rule produced %d records, %d alerts", len(records), len(sink.alerts))
	}

	if err := e.SetRuleEnabled(RuleTypeEmergencySquawk, true); err != nil {
		t.Fatalf("SetRuleEnabled() error = %v", err)
	}
	records, err = e.Evaluate(context.Background(), AircraftEvent(batch, time.Now()))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("re-enabled rule produced %d records, want 1", len(records))
	}
}

func TestSetRuleEnabledUnknownType(t *testing.T) {
	e := NewEngine(nil)
	if err := e.SetRuleEnabled(RuleType("missing"), true); err == nil {
		t.Fatal("SetRuleEnabled() on unregistered type, want error")
	}
}

func TestDefaultEngineRegistry(t *testing.T) {
	cfg := config.Default().Anomaly
	e := NewDefaultEngine(nil, cfg)

	rules := e.Rules()
	if len(rules) != 4 {
		t.Fatalf("len(rules) = %d, want 4", len(rules))
	}

	wantEnabled := map[RuleType]bool{
		RuleTypeEmergencySquawk: true,
		RuleTypeSceneAnomaly:    true,
		RuleTypeLowAltitude:     false,
		RuleTypeHighSpeed:       false,
	}
	for _, r := range rules {
		want, ok := wantEnabled[r.Type()]
		if !ok {
			t.Errorf("unexpected rule %q", r.Type())
			continue
		}
		if r.Enabled() != want {
			t.Errorf("rule %q enabled = %v, want %v", r.Type(), r.Enabled(), want)
		}
	}
}

func TestDefaultEngineHonorsEnvelopeFlags(t *testing.T) {
	cfg := config.Default().Anomaly
	cfg.LowAltitudeEnabled = true
	cfg.HighSpeedEnabled = true
	e := NewDefaultEngine(nil, cfg)

	for _, typ := range []RuleType{RuleTypeLowAltitude, RuleTypeHighSpeed} {
		r, ok := e.Rule(typ)
		if !ok {
			t.Fatalf("rule %q not registered", typ)
		}
		if !r.Enabled() {
			t.Errorf("rule %q disabled despite config flag", typ)
		}
	}
}

// TestEvaluateExactlyOnePerEmergency runs the full default rule set
// over a mixed batch: each emergency code yields exactly one CRITICAL
// record with its standard label, and nothing else triggers.
func TestEvaluateExactlyOnePerEmergency(t *testing.T) {
	sink := &sinkRecorder{}
	e := NewDefaultEngine(sink, config.Default().Anomaly)

	batch := []models.AircraftState{
		cruisingAircraft("e00001", "MAY001", "7700"),
		cruisingAircraft("e00002", "NRD002", "7600"),
		cruisingAircraft("e00003", "HJK003", "7500"),
		cruisingAircraft("n00004", "UAL004", "1200"),
		cruisingAircraft("n00005", "DAL005", "7000"),
		cruisingAircraft("n00006", "", ""),
		cruisingAircraft("n00007", "SWA007", "0000"),
	}

	records, err := e.Evaluate(context.Background(), AircraftEvent(batch, time.Now()))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want exactly 3", len(records))
	}
	if len(sink.alerts) != 3 {
		t.Fatalf("dispatched %d alerts, want 3", len(sink.alerts))
	}

	wantLabels := map[string]string{
		"e00001": "General Emergency",
		"e00002": "Radio Failure",
		"e00003": "Hijacking",
	}
	seen := map[string]int{}
	for _, rec := range records {
		seen[rec.ICAO24]++
		if rec.Severity != models.AlertCritical {
			t.Errorf("record %s severity = %q, want CRITICAL", rec.ICAO24, rec.Severity)
		}
		if want := wantLabels[rec.ICAO24]; rec.Label != want {
			t.Errorf("record %s label = %q, want %q", rec.ICAO24, rec.Label, want)
		}
	}
	for icao := range wantLabels {
		if seen[icao] != 1 {
			t.Errorf("aircraft %s produced %d records, want 1", icao, seen[icao])
		}
	}
}

func TestEvaluateAggregatesRuleErrors(t *testing.T) {
	sink := &sinkRecorder{}
	e := NewEngine(sink)
	e.Register(&failingRule{enabled: true})
	e.Register(NewEmergencySquawkRule())

	batch := []models.AircraftState{cruisingAircraft("abc001", "UAL123", "7700")}
	records, err := e.Evaluate(context.Background(), AircraftEvent(batch, time.Now()))

	if err == nil {
		t.Fatal("Evaluate() error = nil, want aggregated rule failure")
	}
	if !strings.Contains(err.Error(), "failing") {
		t.Errorf("error = %v, want failing rule named", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, healthy rule should still emit", len(records))
	}
	if len(sink.alerts) != 1 {
		t.Errorf("dispatched %d alerts, want 1 from the healthy rule", len(sink.alerts))
	}
}

func TestEvaluateNilEvent(t *testing.T) {
	e := NewDefaultEngine(nil, config.Default().Anomaly)
	records, err := e.Evaluate(context.Background(), nil)
	if err != nil || records != nil {
		t.Fatalf("Evaluate(nil) = %v, %v, want nil, nil", records, err)
	}
}

func TestMetricsCountPerRule(t *testing.T) {
	e := NewEngine(nil)
	e.Register(&failingRule{enabled: true})
	e.Register(NewEmergencySquawkRule())

	batch := []models.AircraftState{
		cruisingAircraft("e00001", "MAY001", "7700"),
		cruisingAircraft("e00002", "NRD002", "7600"),
	}
	_, _ = e.Evaluate(context.Background(), AircraftEvent(batch, time.Now()))
	_, _ = e.Evaluate(context.Background(), AircraftEvent(nil, time.Now()))

	m := e.Metrics()
	if m.EventsProcessed != 2 {
		t.Errorf("EventsProcessed = %d, want 2", m.EventsProcessed)
	}
	if m.RecordsEmitted != 2 {
		t.Errorf("RecordsEmitted = %d, want 2", m.RecordsEmitted)
	}
	if m.RuleErrors != 2 {
		t.Errorf("RuleErrors = %d, want 2", m.RuleErrors)
	}

	squawk := m.Rules[RuleTypeEmergencySquawk]
	if squawk == nil {
		t.Fatal("no metrics for squawk rule")
	}
	if squawk.EventsChecked != 2 || squawk.RecordsEmitted != 2 {
		t.Errorf("squawk metrics = %+v, want 2 checked, 2 emitted", squawk)
	}
	if squawk.LastTriggeredAt == nil {
		t.Error("squawk LastTriggeredAt not stamped")
	}
	if m.LastProcessedAt.IsZero() {
		t.Error("LastProcessedAt not stamped")
	}
}
