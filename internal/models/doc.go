// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package models defines the data structures shared across the AetherWatch
pipeline. It is the single source of truth for the shapes flowing between
fetchers, the anomaly engine, the alert dispatcher, and the HTTP/WebSocket
boundary.

Key Components:

  - AircraftState: one aircraft as normalized from any telemetry provider
  - CameraDescriptor / CameraStatus: camera configuration and fetch health
  - Detection / DetectionResult: object-detection output for one frame
  - AnomalyRecord: a single rule violation (emergency squawk, crowd, ...)
  - AlertRecord: one entry in the bounded alert log
  - BoundingBox / Region: geographic extents for aviation and satellite queries
  - APIResponse / APIError / Metadata: standard HTTP response envelope

Provenance flags:

Every fetch path ends in a synthetic generator that cannot fail, so consumers
distinguish live from simulated data by flags rather than by errors:
AircraftState.IsMock marks generated aircraft, DetectionResult.IsLive marks
real inference output. These flags are threaded through every layer and must
never be dropped.

Thread Safety:

Models are plain data. They are safe for concurrent reads; ownership of a
slice or image buffer transfers to the receiver on return.

JSON marshaling uses snake_case field names throughout (goccy/go-json at the
call sites, tags here).
*/
package models
