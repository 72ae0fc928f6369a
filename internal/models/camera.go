// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package models

import "time"

// FeedKind identifies how a camera feed is fetched.
type FeedKind string

const (
	// FeedStatic is a single still image behind an HTTP GET.
	FeedStatic FeedKind = "static"

	// FeedMJPEG is a multipart MJPEG stream; one frame is extracted per fetch.
	FeedMJPEG FeedKind = "mjpeg"
)

// Valid reports whether the feed kind is one of the supported values.
func (k FeedKind) Valid() bool {
	return k == FeedStatic || k == FeedMJPEG
}

// CameraDescriptor is the static configuration of one camera.
// Immutable once loaded; cameras added at runtime share the same shape.
type CameraDescriptor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Kind        FeedKind `json:"kind"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	City        string   `json:"city,omitempty"`
	Description string   `json:"description,omitempty"`
}

// CameraStatus tracks fetch health for one camera. Mutated only by the fetch
// path; read by the status endpoint to color map markers.
type CameraStatus struct {
	Online      bool      `json:"online"`
	LastSuccess time.Time `json:"last_success"`
	FailCount   int       `json:"fail_count"`
}

// AddCameraRequest is the payload for registering a camera at runtime.
type AddCameraRequest struct {
	ID          string   `json:"id" validate:"required,max=64"`
	Name        string   `json:"name" validate:"required,max=128"`
	URL         string   `json:"url" validate:"required,url"`
	Kind        FeedKind `json:"kind" validate:"required,oneof=static mjpeg"`
	Latitude    float64  `json:"latitude" validate:"latitude"`
	Longitude   float64  `json:"longitude" validate:"longitude"`
	City        string   `json:"city" validate:"max=128"`
	Description string   `json:"description" validate:"max=512"`
}

// Descriptor converts the request into a CameraDescriptor.
func (r AddCameraRequest) Descriptor() CameraDescriptor {
	return CameraDescriptor{
		ID:          r.ID,
		Name:        r.Name,
		URL:         r.URL,
		Kind:        r.Kind,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		City:        r.City,
		Description: r.Description,
	}
}
