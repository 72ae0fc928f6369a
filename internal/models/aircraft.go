// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package models

// SquawkUnknown is the sentinel used when a provider reports no transponder code.
const SquawkUnknown = "----"

// AircraftState represents one aircraft as normalized from any telemetry
// provider. Records are rebuilt on every fetch cycle; identity across polls
// is ICAO24 equality only.
//
// Units are normalized at parse time regardless of provider:
//   - AltitudeFt: barometric altitude in feet (meters sources converted)
//   - VelocityKts: ground speed in knots
//   - VerticalRateFPM: climb/descent rate in feet per minute
//   - Heading: true track in degrees, 0-360
//
// Missing numeric fields default to 0; a missing squawk becomes
// SquawkUnknown. Records whose position falls outside WGS84 bounds are
// discarded during parse, never stored.
type AircraftState struct {
	ICAO24          string  `json:"icao24"`
	Callsign        string  `json:"callsign"`
	OriginCountry   string  `json:"origin_country,omitempty"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	AltitudeFt      float64 `json:"altitude_ft"`
	OnGround        bool    `json:"on_ground"`
	VelocityKts     float64 `json:"velocity_kts"`
	Heading         float64 `json:"heading"`
	VerticalRateFPM float64 `json:"vertical_rate_fpm"`
	Squawk          string  `json:"squawk"`
	AircraftType    string  `json:"aircraft_type,omitempty"`
	LastContact     int64   `json:"last_contact"`
	IsMock          bool    `json:"is_mock"`
}

// ValidPosition reports whether lat/lon fall inside WGS84 bounds.
func ValidPosition(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// AircraftBatchLive reports whether any aircraft in the batch came from a
// live provider. A batch is "live" unless every element is mock.
func AircraftBatchLive(batch []AircraftState) bool {
	for i := range batch {
		if !batch[i].IsMock {
			return true
		}
	}
	return false
}
