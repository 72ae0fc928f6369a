// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package services

import (
	"context"
	"fmt"
)

// StartStopManager interface matches the internal/poller.Poller lifecycle.
//
// This interface abstracts the poller's Start/Stop pattern, allowing the
// PollerService wrapper to adapt it to suture's Serve pattern without
// modifying the poller code.
//
// Satisfied by *poller.Poller from internal/poller/poller.go:
//   - Start(ctx context.Context) error
//   - Stop() error
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// PollerService wraps the ingest poller as a supervised service.
//
// It adapts the Start/Stop lifecycle pattern to suture's Serve pattern:
//  1. Calls Start(ctx) to begin the poll loop
//  2. Waits for context cancellation
//  3. Calls Stop() for graceful shutdown
//
// The poller handles its own goroutine internally via WaitGroup, so this
// wrapper simply orchestrates the lifecycle transitions.
type PollerService struct {
	manager StartStopManager
	name    string
}

// NewPollerService creates a new ingest poller service wrapper.
//
// Example usage:
//
//	p := poller.New(cfg.Poller, bbox, aviation, engine, registry, frames, hub)
//	svc := services.NewPollerService(p)
//	tree.AddDataService(svc)
func NewPollerService(manager StartStopManager) *PollerService {
	return &PollerService{
		manager: manager,
		name:    "ingest-poller",
	}
}

// Serve implements suture.Service.
//
// This method:
//  1. Starts the poller (which spawns its poll loop goroutine)
//  2. Blocks until the context is canceled
//  3. Stops the poller (which waits for the loop to drain)
//
// If Start() fails, the error is returned immediately, causing suture to
// restart the service according to its backoff policy.
func (s *PollerService) Serve(ctx context.Context) error {
	// Start the poller - this spawns the poll loop but returns immediately
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("poller start failed: %w", err)
	}

	// Wait for shutdown signal
	<-ctx.Done()

	// Stop the poller - this blocks until the poll loop has drained
	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("poller stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *PollerService) String() string {
	return s.name
}
