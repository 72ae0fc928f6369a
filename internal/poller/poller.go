// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

// Package poller owns the refresh schedule. Core fetchers never
// self-schedule; the poller's ticker drives the aviation refresh, runs
// the anomaly rules over each new batch, keeps camera statuses fresh
// with a periodic sweep, and pushes snapshots to the WebSocket hub.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/aetherwatch/internal/anomaly"
	"github.com/tomtom215/aetherwatch/internal/camera"
	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/metrics"
	"github.com/tomtom215/aetherwatch/internal/models"
)

const (
	defaultInterval   = 15 * time.Second
	defaultSweepEvery = 4
)

// AircraftSource yields the current aircraft snapshot for a bounding box.
// Satisfied by *aviation.Fetcher.
type AircraftSource interface {
	Snapshot(ctx context.Context, bbox models.BoundingBox) (models.AircraftSnapshot, error)
}

// AnomalySink scores events against the registered rules.
// Satisfied by *anomaly.Engine.
type AnomalySink interface {
	Evaluate(ctx context.Context, event *anomaly.Event) ([]models.AnomalyRecord, error)
}

// CameraDirectory lists the registered cameras.
// Satisfied by *camera.Registry.
type CameraDirectory interface {
	Cameras() []models.CameraDescriptor
}

// FrameSource fetches one camera frame. Fetching updates the camera's
// registry status as a side effect, which is what the sweep is after.
// Satisfied by *camera.Fetcher.
type FrameSource interface {
	Frame(ctx context.Context, desc models.CameraDescriptor) (camera.Frame, error)
}

// Hub receives the poller's pushes for connected WebSocket clients.
// Satisfied by *websocket.Hub.
type Hub interface {
	BroadcastAircraft(snap models.AircraftSnapshot)
	BroadcastStatus(status models.SystemStatus)
}

// Poller runs the refresh cycle on a fixed interval.
//
// Each cycle fetches the aircraft snapshot for the configured bounding
// box, scans new batches with the anomaly rules, and broadcasts the
// snapshot. Every Nth cycle it additionally probes each registered
// camera so offline feeds are noticed without a client requesting
// frames. A batch is scanned at most once: the aviation fetcher keeps
// FetchedAt stable across cache hits, so an unchanged stamp means the
// rules already saw that batch.
type Poller struct {
	aircraft AircraftSource
	engine   AnomalySink
	cameras  CameraDirectory
	frames   FrameSource
	hub      Hub

	interval   time.Duration
	sweepEvery uint64
	bbox       models.BoundingBox

	mu        sync.RWMutex
	running   bool
	lastPoll  time.Time
	lastBatch time.Time
	statusFn  func() models.SystemStatus

	pollMu   sync.Mutex // prevents overlapping cycles
	cycle    uint64     // guarded by pollMu
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a poller. The engine, cameras, frames, and hub may be nil;
// the corresponding step is skipped. Zero config values fall back to the
// 15s interval and a camera sweep every 4th cycle.
func New(cfg config.PollerConfig, bbox models.BoundingBox, aircraft AircraftSource, engine AnomalySink, cameras CameraDirectory, frames FrameSource, hub Hub) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	sweepEvery := cfg.CameraSweepEvery
	if sweepEvery <= 0 {
		sweepEvery = defaultSweepEvery
	}

	return &Poller{
		aircraft:   aircraft,
		engine:     engine,
		cameras:    cameras,
		frames:     frames,
		hub:        hub,
		interval:   interval,
		sweepEvery: uint64(sweepEvery),
		bbox:       bbox,
		stopChan:   make(chan struct{}),
	}
}

// SetStatusFunc installs the system status composer. When set, each
// cycle ends with a status broadcast. The API layer owns status
// composition; the poller only schedules the push.
func (p *Poller) SetStatusFunc(fn func() models.SystemStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusFn = fn
}

// Start begins the refresh loop. The first cycle runs immediately in
// the background so dashboards fill at startup instead of after the
// first tick.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller is already running")
	}
	p.running = true
	p.mu.Unlock()

	logging.Info().
		Dur("interval", p.interval).
		Uint64("camera_sweep_every", p.sweepEvery).
		Str("bbox", p.bbox.String()).
		Msg("Starting poller...")

	p.wg.Add(2)

	go func() {
		defer p.wg.Done()
		p.pollMu.Lock()
		p.poll(ctx)
		p.pollMu.Unlock()
	}()

	go p.pollLoop(ctx)

	return nil
}

// Stop halts the loop and waits for an in-flight cycle to finish.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller is not running")
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()
	logging.Info().Msg("Poller stopped")

	return nil
}

// LastPollTime returns when the last cycle completed.
func (p *Poller) LastPollTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastPoll
}

func (p *Poller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.pollMu.Lock()
			p.poll(ctx)
			p.pollMu.Unlock()
		}
	}
}

// poll runs one cycle. Callers hold pollMu.
func (p *Poller) poll(ctx context.Context) {
	start := time.Now()

	if p.aircraft != nil {
		snap, err := p.aircraft.Snapshot(ctx, p.bbox)
		if err != nil {
			// Snapshot only errors when the context is done.
			logging.Warn().Err(err).Msg("Aviation refresh aborted")
			return
		}
		p.scanBatch(ctx, snap)
		if p.hub != nil {
			p.hub.BroadcastAircraft(snap)
		}
	}

	if p.cameras != nil && p.frames != nil && p.cycle%p.sweepEvery == 0 {
		p.sweepCameras(ctx)
	}

	p.mu.RLock()
	statusFn := p.statusFn
	p.mu.RUnlock()
	if statusFn != nil && p.hub != nil {
		p.hub.BroadcastStatus(statusFn())
	}

	p.cycle++

	now := time.Now()
	p.mu.Lock()
	p.lastPoll = now
	p.mu.Unlock()

	metrics.PollCycles.Inc()
	metrics.PollLastSuccess.Set(float64(now.Unix()))
	logging.Debug().Dur("duration", time.Since(start)).Msg("Poll cycle completed")
}

// scanBatch runs the anomaly rules over a snapshot's batch exactly once.
// A snapshot served from cache keeps its original FetchedAt, so an
// unchanged stamp means this batch was already scanned.
func (p *Poller) scanBatch(ctx context.Context, snap models.AircraftSnapshot) {
	if p.engine == nil {
		return
	}

	p.mu.Lock()
	if !snap.FetchedAt.After(p.lastBatch) {
		p.mu.Unlock()
		return
	}
	p.lastBatch = snap.FetchedAt
	p.mu.Unlock()

	records, err := p.engine.Evaluate(ctx, anomaly.AircraftEvent(snap.Aircraft, snap.FetchedAt))
	if err != nil {
		logging.Error().Err(err).Msg("Anomaly scan failed")
	}
	if len(records) > 0 {
		logging.Info().
			Int("count", len(records)).
			Bool("live", snap.IsLive).
			Msg("Aviation anomalies detected")
	}
}

// sweepCameras probes every registered camera. The fetch itself records
// success or failure in the registry, which is the point of the sweep;
// the returned frames are discarded.
func (p *Poller) sweepCameras(ctx context.Context) {
	descs := p.cameras.Cameras()
	live := 0
	for _, desc := range descs {
		frame, err := p.frames.Frame(ctx, desc)
		if err != nil {
			// Frame only errors when the context is done.
			return
		}
		if frame.Live {
			live++
		}
	}
	logging.Debug().Int("cameras", len(descs)).Int("live", live).Msg("Camera sweep completed")
}
