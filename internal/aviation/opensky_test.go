// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package aviation

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// validStateRow mirrors one OpenSky positional state vector at 35000 ft,
// 450 kts, climbing 1000 fpm, all expressed in the API's metric units.
func validStateRow() []interface{} {
	return []interface{}{
		"abc123", "UAL123  ", "United States", nil, nil,
		-73.5, 40.2, 10668.0, false, 231.5,
		270.0, 5.08, nil, nil, "1200",
		false, 0.0,
	}
}

func TestParseOpenSkyStateConvertsUnits(t *testing.T) {
	state, ok := parseOpenSkyState(validStateRow(), 1700000000)
	if !ok {
		t.Fatal("valid row was dropped")
	}

	if state.ICAO24 != "abc123" {
		t.Errorf("ICAO24 = %q, want abc123", state.ICAO24)
	}
	if state.Callsign != "UAL123" {
		t.Errorf("Callsign = %q, want trimmed UAL123", state.Callsign)
	}
	if state.OriginCountry != "United States" {
		t.Errorf("OriginCountry = %q", state.OriginCountry)
	}
	if math.Abs(state.AltitudeFt-35000) > 0.1 {
		t.Errorf("AltitudeFt = %v, want ~35000", state.AltitudeFt)
	}
	if math.Abs(state.VelocityKts-450) > 0.1 {
		t.Errorf("VelocityKts = %v, want ~450", state.VelocityKts)
	}
	if math.Abs(state.VerticalRateFPM-1000) > 0.1 {
		t.Errorf("VerticalRateFPM = %v, want ~1000", state.VerticalRateFPM)
	}
	if state.Squawk != "1200" {
		t.Errorf("Squawk = %q, want 1200", state.Squawk)
	}
	if state.IsMock {
		t.Error("live row marked as mock")
	}
}

func TestParseOpenSkyStateDropsRows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(row []interface{}) []interface{}
	}{
		{"too short", func(row []interface{}) []interface{} { return row[:10] }},
		{"null latitude", func(row []interface{}) []interface{} { row[6] = nil; return row }},
		{"null longitude", func(row []interface{}) []interface{} { row[5] = nil; return row }},
		{"on ground", func(row []interface{}) []interface{} { row[8] = true; return row }},
		{"latitude out of range", func(row []interface{}) []interface{} { row[6] = 91.0; return row }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseOpenSkyState(tt.mutate(validStateRow()), 0); ok {
				t.Errorf("%s row was kept", tt.name)
			}
		})
	}
}

func TestParseOpenSkyStateDefaults(t *testing.T) {
	row := validStateRow()
	row[1] = "   " // blank callsign
	row[14] = nil  // no squawk

	state, ok := parseOpenSkyState(row, 0)
	if !ok {
		t.Fatal("row was dropped")
	}
	if state.Callsign != "UNKNOWN" {
		t.Errorf("Callsign = %q, want UNKNOWN", state.Callsign)
	}
	if state.Squawk != models.SquawkUnknown {
		t.Errorf("Squawk = %q, want %q", state.Squawk, models.SquawkUnknown)
	}
}

func TestOpenSkyFetchSendsBBoxAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/states/all" {
			t.Errorf("path = %s, want /api/states/all", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lamin") != "24" || q.Get("lomin") != "-125" || q.Get("lamax") != "50" || q.Get("lomax") != "-66" {
			t.Errorf("bbox query = %v", q)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "watcher" || pass != "hunter2" {
			t.Errorf("basic auth = %q/%q (%v)", user, pass, ok)
		}
		_, _ = w.Write([]byte(`{"time": 1700000000, "states": [
			["abc123", "UAL123", "United States", null, null, -73.5, 40.2, 10668.0, false, 231.5, 270.0, 5.08, null, null, "1200", false, 0],
			["def456", "GND1", "Canada", null, null, -74.0, 41.0, 0, true, 0, 0, 0, null, null, "1200", false, 0]
		]}`))
	}))
	defer srv.Close()

	cfg := testAviationConfig()
	cfg.OpenSky.Username = "watcher"
	cfg.OpenSky.Password = "hunter2"
	p := newOpenSkyProvider(srv.URL, cfg)

	bbox, err := models.ParseBoundingBox("-125,24,-66,50")
	if err != nil {
		t.Fatalf("ParseBoundingBox: %v", err)
	}

	batch, err := p.Fetch(context.Background(), bbox)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("len(batch) = %d, want 1 (grounded row filtered)", len(batch))
	}
	if batch[0].ICAO24 != "abc123" {
		t.Errorf("ICAO24 = %q, want abc123", batch[0].ICAO24)
	}
}

func TestOpenSkyFetchEmptyStates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"time": 1700000000, "states": null}`))
	}))
	defer srv.Close()

	p := newOpenSkyProvider(srv.URL, testAviationConfig())

	batch, err := p.Fetch(context.Background(), models.GlobalBBox())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("len(batch) = %d, want 0", len(batch))
	}
}
