// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package anomaly

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/aetherwatch/internal/models"
)

func fastAircraft(icao string, kts float64) models.AircraftState {
	ac := cruisingAircraft(icao, "FST"+icao, "1200")
	ac.VelocityKts = kts
	return ac
}

func TestHighSpeedBoundary(t *testing.T) {
	rule := NewHighSpeedRule(600)

	tests := []struct {
		name string
		kts  float64
		want int
	}{
		{"above ceiling", 601, 1},
		{"at ceiling", 600, 0},
		{"below ceiling", 450, 0},
		{"stationary", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := []models.AircraftState{fastAircraft("hs"+tt.name, tt.kts)}
			records, err := rule.Check(context.Background(), AircraftEvent(batch, time.Now()))
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if len(records) != tt.want {
				t.Fatalf("len(records) = %d, want %d at %.0f kts", len(records), tt.want, tt.kts)
			}
			if tt.want == 1 {
				rec := records[0]
				if rec.Severity != models.AlertWarning {
					t.Errorf("Severity = %q, want WARNING", rec.Severity)
				}
				if rec.Label != "High Speed" {
					t.Errorf("Label = %q", rec.Label)
				}
				if !strings.Contains(rec.Message, "600 kts ceiling") {
					t.Errorf("Message = %q, want ceiling named", rec.Message)
				}
			}
		})
	}
}

func TestHighSpeedDefaultCeiling(t *testing.T) {
	rule := NewHighSpeedRule(0)

	batch := []models.AircraftState{fastAircraft("d1", 650)}
	records, err := rule.Check(context.Background(), AircraftEvent(batch, time.Now()))
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want default 600 kts ceiling applied", len(records))
	}
}

func TestHighSpeedDisabledByDefault(t *testing.T) {
	if NewHighSpeedRule(0).Enabled() {
		t.Fatal("high speed rule enabled by default, want opt-in")
	}
}
