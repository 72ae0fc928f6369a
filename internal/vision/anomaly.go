// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package vision

import (
	"fmt"

	"github.com/tomtom215/aetherwatch/internal/models"
)

// vehicleClasses are the classes pooled for the cluster heuristic.
var vehicleClasses = []string{"car", "truck", "bus", "motorcycle"}

// Airplane boxes covering more than this share of the frame suggest an
// aircraft close to a ground camera. A proximity heuristic, not a range
// estimate.
const airplaneAreaShare = 0.05

// DeriveAnomalies applies the frame-level heuristics to one detection set
// and returns human-readable descriptions. Count thresholds are inclusive.
func DeriveAnomalies(detections []models.Detection, width, height, crowdAt, vehicleAt int) []string {
	if crowdAt < 1 {
		crowdAt = 10
	}
	if vehicleAt < 1 {
		vehicleAt = 6
	}

	var anomalies []string

	counts := make(map[string]int)
	for _, det := range detections {
		counts[det.ClassName]++
	}

	if persons := counts["person"]; persons >= crowdAt {
		anomalies = append(anomalies, fmt.Sprintf("Large crowd detected: %d people in frame", persons))
	}

	vehicles := 0
	for _, class := range vehicleClasses {
		vehicles += counts[class]
	}
	if vehicles >= vehicleAt {
		anomalies = append(anomalies, fmt.Sprintf("High vehicle density: %d vehicles", vehicles))
	}

	frameArea := float64(width) * float64(height)
	if frameArea > 0 {
		for _, det := range detections {
			if det.ClassName == "airplane" && det.Area()/frameArea > airplaneAreaShare {
				anomalies = append(anomalies, "Large aircraft close to ground camera")
			}
		}
	}

	return anomalies
}
