// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package main is the entry point for the AetherWatch server application.

AetherWatch is a self-hosted situational-awareness platform that fuses live
aircraft positions (ADS-B), traffic camera frames, and NASA GIBS satellite
imagery into one dashboard, with anomaly detection and real-time alerting.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("aetherwatch")
	├── DataSupervisor ("data-layer")
	│   └── Ingest Poller (aviation refresh, camera sweeps)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket Hub (real-time updates)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (REST + WebSocket endpoints)

Everything else is request-driven and lives outside the tree: the feed
fetchers, the TTL caches, the anomaly engine, the alert dispatcher, and
the object detector sidecar wrapper.

# Data Flow

	providers (adsb.fi, adsb.lol, OpenSky)          cameras        NASA GIBS
	        │ fallback chain                           │                │
	        ▼                                          ▼                ▼
	  aviation.Fetcher ──► TTL cache         camera.Fetcher      satellite.Fetcher
	        │                                          │                │
	        ▼                                          ▼                │
	  ingest poller ──► anomaly engine ◄── vision detections            │
	        │                  │                                        │
	        │                  ▼                                        │
	        │           alert dispatcher ──► email / SMS                │
	        │                  │                                        │
	        ▼                  ▼                                        ▼
	  WebSocket hub ◄──────────┴──────────── HTTP API ◄─────────────────┘

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	AETHERWATCH_SERVER__PORT=8050
	AETHERWATCH_LOGGING__LEVEL=info          # trace, debug, info, warn, error
	AETHERWATCH_LOGGING__FORMAT=json         # json or console

	# Aviation feed
	AETHERWATCH_AVIATION__PROVIDERS=adsbfi,adsblol,opensky
	AETHERWATCH_AVIATION__FORCE_SIMULATED=false
	AETHERWATCH_AVIATION__DEFAULT_BBOX=-125,24,-66,50
	AETHERWATCH_AVIATION__OPENSKY__USERNAME=<optional>
	AETHERWATCH_AVIATION__OPENSKY__PASSWORD=<optional>

	# Object detection sidecar (empty = passthrough mode)
	AETHERWATCH_VISION__BACKEND_URL=http://localhost:8061

	# Alert channels
	AETHERWATCH_ALERTS__EMAIL__HOST=smtp.example.com
	AETHERWATCH_ALERTS__EMAIL__TO=ops@example.com
	AETHERWATCH_ALERTS__SMS__GATEWAY_URL=https://api.twilio.com/...

See internal/config for the complete reference.

# Graceful Degradation

Every external dependency has a local fallback, so the dashboard never
goes dark:

  - Aviation: provider chain falls through to a synthetic traffic generator
  - Cameras: unreachable feeds degrade to rendered placeholder frames
  - Satellite: WMS failures degrade to synthesized imagery
  - Detection: missing sidecar degrades to passthrough (no boxes drawn)

Responses carry is_live / X-Aetherwatch-Live markers so clients can tell
real data from simulated data.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Broadcasts shutdown to WebSocket clients
 3. Waits for in-flight requests (10s timeout)
 4. Stops the ingest poller and drains its loop
 5. Reports any services that failed to stop

# API Surface

The HTTP API is served under /api/v1:

  - Health: /health/live, /health/ready
  - Aircraft: /aircraft, /aircraft/anomalies
  - Cameras: /cameras, /cameras/{id}/frame
  - Satellite: /satellite/image, /satellite/layers, /satellite/regions, /satellite/dates
  - Alerts: /alerts, /alerts/test
  - Status: /status
  - WebSocket: /ws
  - Metrics: /metrics (Prometheus exposition)

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/poller: Background ingest loop
*/
package main
