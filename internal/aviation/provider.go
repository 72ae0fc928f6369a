// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package aviation

import (
	"context"
	"strings"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// Unit conversion factors. Live providers report in different unit
// systems; everything is normalized to feet, knots and ft/min before
// leaving this package.
const (
	metersToFeet   = 3.28084
	msToKnots      = 1.94384
	msToFeetPerMin = 196.85
)

// Provider is one live aircraft data source in the fallback chain.
//
// Fetch returns the airborne aircraft within bbox. An empty result
// with a nil error is a valid outcome (quiet sky, tiny bbox); the
// chain treats it as reason to try the next provider but not as a
// provider failure.
type Provider interface {
	Name() string

	// IsAvailable reports whether a fetch attempt is worth making
	// right now. A provider with an open circuit breaker or an
	// exhausted rate limit returns false and the chain skips it
	// without burning a request.
	IsAvailable() bool

	Fetch(ctx context.Context, bbox models.BoundingBox) ([]models.AircraftState, error)
}

// normalizeCallsign trims padding and substitutes the placeholder the
// dashboard expects for anonymous aircraft.
func normalizeCallsign(raw string) string {
	cs := strings.TrimSpace(raw)
	if cs == "" {
		return "UNKNOWN"
	}
	return cs
}

// normalizeSquawk substitutes the sentinel for absent transponder
// codes.
func normalizeSquawk(raw string) string {
	sq := strings.TrimSpace(raw)
	if sq == "" {
		return models.SquawkUnknown
	}
	return sq
}
