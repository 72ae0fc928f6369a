// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/aetherwatch/internal/alerts"
	"github.com/tomtom215/aetherwatch/internal/anomaly"
	"github.com/tomtom215/aetherwatch/internal/aviation"
	"github.com/tomtom215/aetherwatch/internal/cache"
	"github.com/tomtom215/aetherwatch/internal/camera"
	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/satellite"
	"github.com/tomtom215/aetherwatch/internal/vision"
	ws "github.com/tomtom215/aetherwatch/internal/websocket"
)

// Deps bundles the pipeline components the HTTP handlers serve.
// Any component may be nil; the affected endpoints then answer 503
// instead of panicking, which keeps partial deployments inspectable.
type Deps struct {
	Config     *config.Config
	Aviation   *aviation.Fetcher
	Cameras    *camera.Registry
	Frames     *camera.Fetcher
	Satellite  *satellite.Fetcher
	Detector   *vision.Detector
	Engine     *anomaly.Engine
	Dispatcher *alerts.Dispatcher
	Hub        *ws.Hub
	Caches     []*cache.Cache
}

// Handler processes HTTP requests for all API endpoints.
//
// Handlers follow a consistent pattern:
//  1. Parameter parsing and validation
//  2. Fetch or pipeline call with the request context
//  3. JSON envelope (or JPEG bytes) with metadata
type Handler struct {
	config     *config.Config
	aviation   *aviation.Fetcher
	cameras    *camera.Registry
	frames     *camera.Fetcher
	satellite  *satellite.Fetcher
	detector   *vision.Detector
	engine     *anomaly.Engine
	dispatcher *alerts.Dispatcher
	wsHub      *ws.Hub
	caches     []*cache.Cache
	startTime  time.Time
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		config:     deps.Config,
		aviation:   deps.Aviation,
		cameras:    deps.Cameras,
		frames:     deps.Frames,
		satellite:  deps.Satellite,
		detector:   deps.Detector,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		wsHub:      deps.Hub,
		caches:     deps.Caches,
		startTime:  time.Now(),
	}
}

// requireAviation checks aviation fetcher availability and returns true if available,
// false if an error was sent.
func (h *Handler) requireAviation(w http.ResponseWriter) bool {
	if h.aviation == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Aviation fetcher not available", nil)
		return false
	}
	return true
}

// requireCameras checks camera registry availability.
func (h *Handler) requireCameras(w http.ResponseWriter) bool {
	if h.cameras == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Camera registry not available", nil)
		return false
	}
	return true
}

// requireSatellite checks satellite fetcher availability.
func (h *Handler) requireSatellite(w http.ResponseWriter) bool {
	if h.satellite == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Satellite fetcher not available", nil)
		return false
	}
	return true
}

// requireDispatcher checks alert dispatcher availability.
func (h *Handler) requireDispatcher(w http.ResponseWriter) bool {
	if h.dispatcher == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_ERROR", "Alert dispatcher not available", nil)
		return false
	}
	return true
}

// getUpgrader creates a WebSocket upgrader with proper origin checking and timeouts.
// HandshakeTimeout protects against slow client attacks.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// If no origin header, REJECT - legitimate browser WebSockets ALWAYS include Origin
	// Only non-browser clients (curl, scripts, mobile apps) omit Origin header
	// Allowing empty Origin bypasses CORS entirely - security vulnerability
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// If config is nil, allow by default (fail open for tests/development)
	if h.config == nil {
		return true
	}

	// Check against allowed origins from config
	for _, allowedOrigin := range h.config.Server.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	// Origin not in allowed list - sanitize origin to prevent log injection
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and attaches the client to the hub.
// The hub then pushes alert, aircraft and status messages until the peer
// disconnects.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	// Check if WebSocket hub is available
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
