// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package api provides the HTTP REST API layer for AetherWatch.

This package implements the HTTP endpoints for aircraft positions, camera
frames, satellite imagery, anomaly alerts, and system status. It serves as
the boundary between the dashboard frontend and the fetch pipeline.

Key Components:

  - Router: Chi route configuration and middleware stack integration
  - Handler: Request handlers for all API endpoints
  - Response formatting: Standardized JSON responses with metadata
  - Error handling: Consistent error responses with appropriate HTTP status codes
  - Rate limiting: Per-IP token buckets via go-chi/httprate
  - CORS: Cross-Origin Resource Sharing for frontend compatibility

API Categories:

1. Health Endpoints (/api/v1/health/):
  - Liveness and readiness probes (health/live, health/ready)

2. Aviation Endpoints (/api/v1/aircraft):
  - Current aircraft within a bounding box
  - Current emergency-squawk anomalies

3. Camera Endpoints (/api/v1/cameras):
  - Camera list with fetch health, runtime registration
  - Frame retrieval with optional object detection

4. Satellite Endpoints (/api/v1/satellite/):
  - Rendered imagery for a layer, date and region or bounding box
  - Layer, region and date catalogs

5. Alert Endpoints (/api/v1/alerts):
  - Recent alerts newest-first, buffer clear, test alert emission

6. WebSocket Endpoint (/api/v1/ws):
  - Real-time alert, aircraft and status push

Usage Example:

	import (
	    "github.com/tomtom215/aetherwatch/internal/api"
	)

	handler := api.NewHandler(deps)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromServer(cfg.Server))

	http.ListenAndServe(":8710", router.Setup())

Responses are JSON envelopes (models.APIResponse) except the two image
endpoints, which return raw JPEG bytes with provenance carried in
X-Aetherwatch-* headers.
*/
package api
