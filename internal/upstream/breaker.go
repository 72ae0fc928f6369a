// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package upstream provides the shared plumbing for talking to external
data providers over HTTP: a circuit breaker wrapper, a rate-limited
client, and typed error values that let callers distinguish provider
outages from transient failures.

Every upstream source (aviation providers, the satellite imagery
service, the detection backend, the SMS gateway) goes through a Breaker
so that a failing provider is skipped quickly instead of burning the
poll budget on timeouts. Breaker state feeds the circuit breaker
metrics and the availability checks used by fallback chains.
*/
package upstream

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/metrics"
)

// Breaker wraps calls to a single upstream provider with circuit
// breaker protection. When the provider fails repeatedly the breaker
// opens and calls are rejected immediately until the recovery timeout
// elapses, at which point a limited number of probe requests are let
// through.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewBreaker creates a circuit breaker for the named upstream.
//
// The breaker opens when at least 10 requests have been observed in the
// rolling interval and 60% or more of them failed. While open, all
// calls fail fast with ErrUnavailable. After 2 minutes the breaker
// moves to half-open and allows 3 probe requests.
func NewBreaker(name string) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := counts.Requests >= 10 && failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("requests", counts.Requests).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_ratio", failureRatio).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State changed")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(gobreaker.StateClosed))

	return &Breaker{
		cb:   gobreaker.NewCircuitBreaker[interface{}](settings),
		name: name,
	}
}

// Name returns the breaker name as used in logs and metric labels.
func (b *Breaker) Name() string {
	return b.name
}

// Execute runs fn through the circuit breaker. When the breaker is open
// or half-open capacity is exhausted, fn is not invoked and the error
// wraps ErrUnavailable.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w: %v", b.name, ErrUnavailable, err)
		}
		return nil, err
	}
	return result, nil
}

// Available reports whether the breaker would currently admit a
// request. Fallback chains use this to skip a tripped provider without
// paying for a rejected call.
func (b *Breaker) Available() bool {
	return b.cb.State() != gobreaker.StateOpen
}

// State returns the current breaker state as a string for status
// reporting.
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

// CastResult converts a breaker result to the expected concrete type.
// The breaker stores results as interface{}, so callers use this to
// recover the typed value.
func CastResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}

	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}

	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
