// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package aviation fetches live aircraft telemetry through a prioritized
provider fallback chain.

The chain tries each configured provider in order (adsb.fi and adsb.lol
point-radius grids, then the OpenSky bbox endpoint) and falls back to a
synthetic generator that cannot fail, so a fetch always produces
aircraft. Every successful step caches its batch; an identical request
inside the TTL window short-circuits the whole chain. Simulated
aircraft are always marked is_mock so consumers can tell the dashboard
is degraded.

Provider order is configuration, not code: aviation.providers lists
the chain, and unknown names are rejected when the config loads.
*/
package aviation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/aetherwatch/internal/cache"
	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/metrics"
	"github.com/tomtom215/aetherwatch/internal/models"
)

// Fetcher runs the aviation fallback chain.
type Fetcher struct {
	providers      []Provider
	generator      *Generator
	cache          *cache.Cache
	maxAircraft    int
	forceSimulated bool
}

// NewFetcher builds the chain from configuration. Provider names have
// already been validated by config.Validate, so unknown names are
// silently skipped here.
func NewFetcher(cfg config.AviationConfig, c *cache.Cache) *Fetcher {
	providers := make([]Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch name {
		case "adsbfi":
			providers = append(providers, NewAdsbFi(cfg))
		case "adsblol":
			providers = append(providers, NewAdsbLol(cfg))
		case "opensky":
			providers = append(providers, NewOpenSky(cfg))
		}
	}

	maxAircraft := cfg.MaxAircraft
	if maxAircraft <= 0 {
		maxAircraft = 500
	}

	return &Fetcher{
		providers:      providers,
		generator:      NewGenerator(),
		cache:          c,
		maxAircraft:    maxAircraft,
		forceSimulated: cfg.ForceSimulated,
	}
}

// Fetch returns the airborne aircraft within bbox. It is Snapshot
// without the provenance wrapper.
func (f *Fetcher) Fetch(ctx context.Context, bbox models.BoundingBox) ([]models.AircraftState, error) {
	snap, err := f.Snapshot(ctx, bbox)
	if err != nil {
		return nil, err
	}
	return snap.Aircraft, nil
}

// Snapshot returns the airborne aircraft within bbox, from cache when
// fresh, otherwise from the first provider that delivers a non-empty
// batch, otherwise from the generator. The batch is capped and sorted
// by icao24. FetchedAt is the time the batch was actually fetched, so
// a cache hit keeps the original stamp; the poller uses that to
// evaluate each batch against the anomaly rules exactly once.
func (f *Fetcher) Snapshot(ctx context.Context, bbox models.BoundingBox) (models.AircraftSnapshot, error) {
	key := cache.GenerateKey("aviation", bbox)
	if v, ok := f.cache.Get(key); ok {
		if snap, ok := v.(models.AircraftSnapshot); ok {
			return snap, nil
		}
	}

	if f.forceSimulated {
		return f.simulated(key), nil
	}

	var errs []error
	for _, p := range f.providers {
		if ctx.Err() != nil {
			return models.AircraftSnapshot{}, ctx.Err()
		}
		if !p.IsAvailable() {
			logging.Debug().
				Str("provider", p.Name()).
				Msg("Skipping unavailable aviation provider")
			continue
		}

		start := time.Now()
		batch, err := p.Fetch(ctx, bbox)
		metrics.RecordFetch("aviation", p.Name(), time.Since(start), err)

		if err != nil {
			logging.Warn().
				Err(err).
				Str("provider", p.Name()).
				Msg("Aviation provider failed, trying next")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if len(batch) == 0 {
			logging.Debug().
				Str("provider", p.Name()).
				Msg("Aviation provider returned no aircraft, trying next")
			continue
		}

		snap := f.store(key, f.finalize(batch))
		logging.Info().
			Str("provider", p.Name()).
			Int("count", snap.Count).
			Msg("Fetched aircraft")
		return snap, nil
	}

	if ctx.Err() != nil {
		return models.AircraftSnapshot{}, ctx.Err()
	}

	if len(errs) > 0 {
		logging.Warn().
			Err(errors.Join(errs...)).
			Msg("All aviation providers failed, using generator")
	} else {
		logging.Info().Msg("No live aircraft available, using generator")
	}
	return f.simulated(key), nil
}

// ProviderStatuses reports chain availability for the status endpoint.
func (f *Fetcher) ProviderStatuses() []models.ProviderStatus {
	out := make([]models.ProviderStatus, 0, len(f.providers))
	for _, p := range f.providers {
		out = append(out, models.ProviderStatus{
			Name:      p.Name(),
			Available: p.IsAvailable(),
		})
	}
	return out
}

func (f *Fetcher) simulated(key string) models.AircraftSnapshot {
	metrics.MockFallbacks.WithLabelValues("aviation").Inc()
	return f.store(key, f.generator.Generate(f.maxAircraft))
}

// store wraps a finalized batch in its provenance and caches it.
func (f *Fetcher) store(key string, batch []models.AircraftState) models.AircraftSnapshot {
	snap := models.AircraftSnapshot{
		Aircraft:  batch,
		Count:     len(batch),
		IsLive:    models.AircraftBatchLive(batch),
		FetchedAt: time.Now().UTC(),
	}
	f.cache.Set(key, snap)
	return snap
}

// finalize sorts by icao24 for stable output and applies the batch
// cap. Sorting before capping keeps the cap deterministic instead of
// biased by grid goroutine completion order.
func (f *Fetcher) finalize(batch []models.AircraftState) []models.AircraftState {
	sort.Slice(batch, func(i, j int) bool {
		return batch[i].ICAO24 < batch[j].ICAO24
	})
	if len(batch) > f.maxAircraft {
		batch = batch[:f.maxAircraft]
	}
	return batch
}
