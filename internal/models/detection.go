// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package models

import "time"

// Detection is one bounding box from a single inference call.
// Coordinates are pixels in the source frame with x1<x2 and y1<y2.
type Detection struct {
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
}

// Area returns the bounding box area in square pixels.
func (d Detection) Area() float64 {
	return float64(d.X2-d.X1) * float64(d.Y2-d.Y1)
}

// DetectionResult is everything produced by one Detect call. The annotated
// frame is a copy; the caller's input bytes are never mutated. Exactly one
// result exists per call and is discarded after the boundary consumes it.
//
// IsLive=false marks a passthrough result: the detection backend was
// unavailable (still loading, or load failed) and no inference ran.
type DetectionResult struct {
	Detections  []Detection `json:"detections"`
	Annotated   []byte      `json:"-"`
	InferenceMS float64     `json:"inference_ms"`
	Anomalies   []string    `json:"anomalies,omitempty"`
	IsLive      bool        `json:"is_live"`
	Backend     string      `json:"backend,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// CountClass returns how many detections carry the given class name.
func (r *DetectionResult) CountClass(name string) int {
	n := 0
	for i := range r.Detections {
		if r.Detections[i].ClassName == name {
			n++
		}
	}
	return n
}
