// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers to routes with the middleware stack applied per
// route group.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil chiMiddleware gets the default
// configuration, which denies all CORS origins until configured.
func NewRouter(handler *Handler, cm *ChiMiddleware) *Router {
	if cm == nil {
		cm = NewChiMiddleware(DefaultChiMiddlewareConfig())
	}
	return &Router{handler: handler, chiMiddleware: cm}
}

// Setup configures all HTTP routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())      // Add X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting (1000/min) so orchestrator probes and
	// monitoring agents never get throttled into a false outage.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Aviation Endpoints
	// ========================
	r.Route("/api/v1/aircraft", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/", router.handler.Aircraft)
		r.Get("/anomalies", router.handler.AircraftAnomalies)
	})

	// ========================
	// Camera Endpoints
	// ========================
	// Frame fetches are capped separately: every request can turn into an
	// upstream camera hit plus a detector round trip.
	r.Route("/api/v1/cameras", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/", router.handler.Cameras)
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/", router.handler.CameraAdd)
		r.With(router.chiMiddleware.RateLimitImage()).Get("/{id}/frame", router.handler.CameraFrame)
	})

	// ========================
	// Satellite Endpoints
	// ========================
	r.Route("/api/v1/satellite", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.With(router.chiMiddleware.RateLimitImage()).Get("/image", router.handler.SatelliteImage)
		r.Get("/layers", router.handler.SatelliteLayers)
		r.Get("/regions", router.handler.SatelliteRegions)
		r.Get("/dates", router.handler.SatelliteDates)
	})

	// ========================
	// Alert Endpoints
	// ========================
	r.Route("/api/v1/alerts", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/", router.handler.Alerts)
		r.With(router.chiMiddleware.RateLimitWrite()).Delete("/", router.handler.AlertsClear)
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/test", router.handler.AlertTest)
	})

	// ========================
	// Status & WebSocket
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/status", router.handler.Status)
		r.With(router.chiMiddleware.RateLimitWebSocket()).Get("/ws", router.handler.WebSocket)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
