// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer stands up the full router against a real listener.
func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()

	handler := newTestHandler(t)
	router := NewRouter(handler, NewChiMiddlewareFromServer(handler.config.Server))

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	return srv, handler
}

func TestNewRouter_NilMiddleware(t *testing.T) {
	t.Parallel()

	router := NewRouter(newTestHandler(t), nil)

	if router == nil {
		t.Fatal("NewRouter returned nil")
	}
	if router.chiMiddleware == nil {
		t.Error("Expected default middleware when nil is passed")
	}
	if router.Setup() == nil {
		t.Error("Setup returned nil handler")
	}
}

// TestRouter_Routes smoke-tests every mounted route group end to end.
func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"HealthLive", http.MethodGet, "/api/v1/health/live", http.StatusOK},
		{"HealthReady", http.MethodGet, "/api/v1/health/ready", http.StatusOK},
		{"Aircraft", http.MethodGet, "/api/v1/aircraft", http.StatusOK},
		{"AircraftAnomalies", http.MethodGet, "/api/v1/aircraft/anomalies", http.StatusOK},
		{"Cameras", http.MethodGet, "/api/v1/cameras", http.StatusOK},
		{"SatelliteLayers", http.MethodGet, "/api/v1/satellite/layers", http.StatusOK},
		{"SatelliteRegions", http.MethodGet, "/api/v1/satellite/regions", http.StatusOK},
		{"SatelliteDates", http.MethodGet, "/api/v1/satellite/dates", http.StatusOK},
		{"Alerts", http.MethodGet, "/api/v1/alerts", http.StatusOK},
		{"Status", http.MethodGet, "/api/v1/status", http.StatusOK},
		{"Metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"UnknownRoute", http.MethodGet, "/api/v1/nonexistent", http.StatusNotFound},
		{"UnknownRoot", http.MethodGet, "/anything", http.StatusNotFound},
		{"WrongMethod", http.MethodDelete, "/api/v1/status", http.StatusMethodNotAllowed},
		{"CameraFrameUnknown", http.MethodGet, "/api/v1/cameras/nope/frame", http.StatusNotFound},
	}

	client := srv.Client()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}

			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

// TestRouter_SecurityAndRequestHeaders verifies the global and group
// middleware actually ran.
func TestRouter_SecurityAndRequestHeaders(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID from the global middleware")
	}
	if v := resp.Header.Get("X-Content-Type-Options"); v != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", v)
	}
	if v := resp.Header.Get("X-Frame-Options"); v != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", v)
	}
}

// TestRouter_WebSocketRejectsPlainGet verifies the ws route is mounted;
// a non-upgrade request is refused by the upgrader.
func TestRouter_WebSocketRejectsPlainGet(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "http://dash.local")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a plain GET on the ws endpoint", resp.StatusCode)
	}
}

// TestRouter_MetricsExposition verifies Prometheus text output is served.
func TestRouter_MetricsExposition(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	// Generate one API hit so the request counter has a sample.
	resp, err := srv.Client().Get(srv.URL + "/api/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(body) == 0 {
		t.Error("Expected non-empty metrics exposition")
	}
}
