// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

// Package main is the entry point for the AetherWatch server application.
//
// AetherWatch is a self-hosted situational-awareness dashboard that fuses
// live aircraft positions, traffic camera frames, and satellite imagery
// into a single picture, scores the combined feed against anomaly rules,
// and pushes alerts to connected clients in real time.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Logging: zerolog with JSON/console output modes
//  3. Caches: Per-feed TTL caches for aviation, camera, and satellite data
//  4. Alert Dispatcher: Ring-buffered alert log with email/SMS notifiers
//  5. WebSocket Hub: Real-time updates to connected clients
//  6. Fetchers: Aviation, camera, and satellite fetchers with fallback chains
//  7. Object Detector: Optional HTTP sidecar for frame analysis
//  8. Anomaly Engine: Squawk, altitude, speed, and scene rules
//  9. Ingest Poller: Periodic aviation refresh and camera sweeps
//  10. HTTP Server: Chi router with middleware stack
//  11. Supervisor Tree: Suture v4 process supervision
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (AETHERWATCH_ prefix, __ for nesting)
//   - Config file (config.yaml, or AETHERWATCH_CONFIG path)
//   - Built-in defaults
//
// Core environment variables:
//
//	AETHERWATCH_SERVER__PORT=8050
//	AETHERWATCH_LOGGING__LEVEL=info
//	AETHERWATCH_AVIATION__PROVIDERS=adsbfi,adsblol,opensky
//	AETHERWATCH_AVIATION__FORCE_SIMULATED=false
//	AETHERWATCH_VISION__BACKEND_URL=http://localhost:8061
//
// # Simulated Mode
//
// AetherWatch runs fully offline when live feeds are unreachable: the
// aviation fetcher falls back to a synthetic traffic generator, camera
// frames degrade to rendered placeholders, and satellite imagery is
// synthesized locally. Set AETHERWATCH_AVIATION__FORCE_SIMULATED=true
// to skip live providers entirely.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the ingest poller and drains its loop
//   - Closes WebSocket clients with a shutdown notification
//
// # Example Usage
//
// Fully offline development run:
//
//	export AETHERWATCH_AVIATION__FORCE_SIMULATED=true
//	go run ./cmd/server
//
// Live feeds with an object detection sidecar:
//
//	export AETHERWATCH_VISION__BACKEND_URL=http://localhost:8061
//	export AETHERWATCH_AVIATION__OPENSKY__USERNAME=youruser
//	export AETHERWATCH_AVIATION__OPENSKY__PASSWORD=yourpass
//	./aetherwatch
//
// Docker:
//
//	docker run -d \
//	  -e AETHERWATCH_AVIATION__FORCE_SIMULATED=true \
//	  -p 8050:8050 \
//	  ghcr.io/tomtom215/aetherwatch
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/aetherwatch/internal/alerts"
	"github.com/tomtom215/aetherwatch/internal/anomaly"
	"github.com/tomtom215/aetherwatch/internal/api"
	"github.com/tomtom215/aetherwatch/internal/aviation"
	"github.com/tomtom215/aetherwatch/internal/cache"
	"github.com/tomtom215/aetherwatch/internal/camera"
	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/models"
	"github.com/tomtom215/aetherwatch/internal/poller"
	"github.com/tomtom215/aetherwatch/internal/satellite"
	"github.com/tomtom215/aetherwatch/internal/supervisor"
	"github.com/tomtom215/aetherwatch/internal/supervisor/services"
	"github.com/tomtom215/aetherwatch/internal/vision"
	ws "github.com/tomtom215/aetherwatch/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting AetherWatch with supervisor tree")

	// Log configuration status - show the feed mode up front
	if cfg.Aviation.ForceSimulated {
		logging.Info().
			Bool("force_simulated", true).
			Str("bbox", cfg.Aviation.DefaultBBox).
			Msg("Configuration loaded (simulated feed)")
	} else {
		logging.Info().
			Strs("providers", cfg.Aviation.Providers).
			Str("bbox", cfg.Aviation.DefaultBBox).
			Msg("Configuration loaded")
	}

	bbox, err := models.ParseBoundingBox(cfg.Aviation.DefaultBBox)
	if err != nil {
		logging.Fatal().Err(err).Str("bbox", cfg.Aviation.DefaultBBox).Msg("Invalid default bounding box")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Per-feed TTL caches. Capacities and TTLs come from config so the
	// memory footprint stays predictable on small hosts.
	aviationCache := cache.New("aviation", cfg.Aviation.CacheCapacity, cfg.Aviation.CacheTTL)
	cameraCache := cache.New("camera", cfg.Camera.CacheCapacity, cfg.Camera.CacheTTL)
	satelliteCache := cache.New("satellite", cfg.Satellite.CacheCapacity, cfg.Satellite.CacheTTL)

	// Alert dispatcher with outbound notifiers. Disabled channels stay
	// registered; they refuse sends individually so the test endpoint can
	// report channel state honestly.
	emailNotifier := alerts.NewEmailNotifier(cfg.Alerts.Email)
	smsNotifier := alerts.NewSMSNotifier(cfg.Alerts.SMS)
	dispatcher := alerts.NewDispatcher(cfg.Alerts.BufferCapacity, emailNotifier, smsNotifier)
	logging.Info().
		Int("capacity", cfg.Alerts.BufferCapacity).
		Bool("email", emailNotifier.Enabled()).
		Bool("sms", smsNotifier.Enabled()).
		Msg("Alert dispatcher initialized")

	// Create WebSocket hub for real-time updates (before the fetchers)
	// so the dispatcher can broadcast alerts from the first poll cycle.
	wsHub := ws.NewHub()
	dispatcher.AttachBroadcaster(wsHub)

	// Feed fetchers. Each owns its fallback chain; a fetcher returning
	// simulated data is a degraded success, not an error.
	aviationFetcher := aviation.NewFetcher(cfg.Aviation, aviationCache)
	registry := camera.NewRegistry()
	frameFetcher := camera.NewFetcher(cfg.Camera, registry, cameraCache)
	satelliteFetcher := satellite.NewFetcher(cfg.Satellite, satelliteCache, dispatcher)
	logging.Info().Int("cameras", len(registry.Cameras())).Msg("Camera registry seeded")

	// Object detector sidecar. StartLoad begins the capability handshake
	// in the background; an unconfigured or unreachable backend degrades
	// to passthrough rather than blocking startup.
	detector := vision.NewDetector(cfg.Vision)
	detector.StartLoad()
	if cfg.Vision.BackendURL != "" {
		logging.Info().Str("backend", cfg.Vision.BackendURL).Msg("Object detection backend configured")
	}

	// Anomaly engine with the default rule set. Altitude and speed rules
	// honor their config-level enable flags.
	engine := anomaly.NewDefaultEngine(dispatcher, cfg.Anomaly)
	logging.Info().Int("rules", len(engine.Rules())).Msg("Anomaly engine initialized")

	// Ingest poller drives the periodic aviation refresh and camera
	// sweeps. It is started by the supervisor, not here.
	ingestPoller := poller.New(cfg.Poller, bbox, aviationFetcher, engine, registry, frameFetcher, wsHub)

	handler := api.NewHandler(api.Deps{
		Config:     cfg,
		Aviation:   aviationFetcher,
		Cameras:    registry,
		Frames:     frameFetcher,
		Satellite:  satelliteFetcher,
		Detector:   detector,
		Engine:     engine,
		Dispatcher: dispatcher,
		Hub:        wsHub,
		Caches:     []*cache.Cache{aviationCache, cameraCache, satelliteCache},
	})

	// The poller reuses the handler's status composer for its periodic
	// websocket status broadcasts.
	ingestPoller.SetStatusFunc(handler.ComposeStatus)

	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (AETHERWATCH_SERVER__RATE_LIMIT_DISABLED=true)")
		logging.Warn().Msg("This should only be used for local development and CI runs!")
	}

	router := api.NewRouter(handler, api.NewChiMiddlewareFromServer(cfg.Server))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	tree.AddDataService(services.NewPollerService(ingestPoller))
	logging.Info().Dur("interval", cfg.Poller.Interval).Msg("Ingest poller added to supervisor tree")

	// Messaging layer services
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	logging.Info().Msg("WebSocket hub added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
