// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package models

import (
	"fmt"
	"strconv"
	"strings"
)

// BoundingBox is a geographic extent in WGS84 degrees.
// Field order follows the WMS BBOX convention: west, south, east, north.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// GlobalBBox covers the whole globe.
func GlobalBBox() BoundingBox {
	return BoundingBox{West: -180, South: -90, East: 180, North: 90}
}

// Validate checks coordinate ranges and south/north, west/east ordering.
func (b BoundingBox) Validate() error {
	if b.South < -90 || b.North > 90 || b.West < -180 || b.East > 180 {
		return fmt.Errorf("bounding box %s outside WGS84 range", b)
	}
	if b.South >= b.North {
		return fmt.Errorf("bounding box south %.4f not below north %.4f", b.South, b.North)
	}
	if b.West >= b.East {
		return fmt.Errorf("bounding box west %.4f not left of east %.4f", b.West, b.East)
	}
	return nil
}

// LonSpan returns the longitudinal extent in degrees.
func (b BoundingBox) LonSpan() float64 { return b.East - b.West }

// LatSpan returns the latitudinal extent in degrees.
func (b BoundingBox) LatSpan() float64 { return b.North - b.South }

// Center returns the midpoint latitude and longitude.
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// String renders the box in WMS parameter order: "west,south,east,north".
func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.West, b.South, b.East, b.North)
}

// ParseBoundingBox parses "west,south,east,north" as produced by String
// and by dashboard query parameters.
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box %q: want 4 comma-separated values, got %d", s, len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bounding box %q: component %d: %w", s, i, err)
		}
		vals[i] = v
	}
	b := BoundingBox{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}
	if err := b.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return b, nil
}

// Region is a named satellite imagery preset.
type Region struct {
	Key  string      `json:"key"`
	Name string      `json:"name"`
	BBox BoundingBox `json:"bbox"`
}
