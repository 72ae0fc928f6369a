// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package camera

import (
	"strings"
	"testing"

	"github.com/tomtom215/aetherwatch/internal/models"
)

func TestRegistrySeedsBuiltinCameras(t *testing.T) {
	r := NewRegistry()

	cams := r.Cameras()
	if len(cams) != len(builtinCameras) {
		t.Fatalf("len(Cameras()) = %d, want %d", len(cams), len(builtinCameras))
	}
	if cams[0].ID != "cam_nyc_01" {
		t.Errorf("first camera = %q, want cam_nyc_01 (registration order)", cams[0].ID)
	}
	for _, c := range cams {
		if !c.Kind.Valid() {
			t.Errorf("builtin camera %s has invalid kind %q", c.ID, c.Kind)
		}
		if c.URL == "" || c.Name == "" {
			t.Errorf("builtin camera %s missing url or name", c.ID)
		}
	}
}

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry()

	desc := models.CameraDescriptor{
		ID: "cam_custom_01", Name: "Custom", URL: "http://example.com/cam.jpg",
		Kind: models.FeedMJPEG, Latitude: 1, Longitude: 2,
	}
	if err := r.Add(desc); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, ok := r.Get("cam_custom_01")
	if !ok || got.Kind != models.FeedMJPEG {
		t.Errorf("Get() = %+v, %v", got, ok)
	}

	cams := r.Cameras()
	if cams[len(cams)-1].ID != "cam_custom_01" {
		t.Error("added camera not appended at the end")
	}
}

func TestRegistryAddRejectsDuplicateAndBadKind(t *testing.T) {
	r := NewRegistry()

	err := r.Add(models.CameraDescriptor{ID: "cam_nyc_01", Kind: models.FeedStatic})
	if err == nil || !strings.Contains(err.Error(), "cam_nyc_01") {
		t.Errorf("duplicate Add() error = %v, want error naming the id", err)
	}

	err = r.Add(models.CameraDescriptor{ID: "cam_x", Kind: "rtsp"})
	if err == nil || !strings.Contains(err.Error(), "rtsp") {
		t.Errorf("bad kind Add() error = %v, want error naming the kind", err)
	}
}

func TestRegistryFailureLogCadence(t *testing.T) {
	r := NewRegistry()

	wantLog := map[int]bool{1: true, 6: true, 11: true}
	for i := 1; i <= 12; i++ {
		count, shouldLog := r.recordFailure("cam_nyc_01")
		if count != i {
			t.Fatalf("failure %d recorded as count %d", i, count)
		}
		if shouldLog != wantLog[i] {
			t.Errorf("failure %d: shouldLog = %v, want %v", i, shouldLog, wantLog[i])
		}
	}

	status, ok := r.Status("cam_nyc_01")
	if !ok || status.Online || status.FailCount != 12 {
		t.Errorf("status = %+v, %v", status, ok)
	}
}

func TestRegistrySuccessResetsFailureStreak(t *testing.T) {
	r := NewRegistry()

	for i := 0; i < 3; i++ {
		r.recordFailure("cam_sea_01")
	}
	r.recordSuccess("cam_sea_01")

	status, _ := r.Status("cam_sea_01")
	if !status.Online || status.FailCount != 0 || status.LastSuccess.IsZero() {
		t.Errorf("status after success = %+v", status)
	}
	if r.OnlineCount() != 1 {
		t.Errorf("OnlineCount() = %d, want 1", r.OnlineCount())
	}

	// The streak restarts, so the next failure logs again.
	if _, shouldLog := r.recordFailure("cam_sea_01"); !shouldLog {
		t.Error("first failure after recovery should log")
	}
}

func TestRegistryStatusesSnapshot(t *testing.T) {
	r := NewRegistry()
	r.recordSuccess("cam_nyc_01")

	snap := r.Statuses()
	snap["cam_nyc_01"] = models.CameraStatus{Online: false}

	if status, _ := r.Status("cam_nyc_01"); !status.Online {
		t.Error("mutating the snapshot changed registry state")
	}
}
