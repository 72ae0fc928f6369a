// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// MockPoller simulates the poller.Poller for testing.
// It matches the StartStopManager interface.
type MockPoller struct {
	started    atomic.Bool
	stopped    atomic.Bool
	startError error
	stopError  error
}

func (m *MockPoller) Start(ctx context.Context) error {
	if m.startError != nil {
		return m.startError
	}
	m.started.Store(true)
	return nil
}

func (m *MockPoller) Stop() error {
	m.stopped.Store(true)
	return m.stopError
}

func TestPollerServiceInterface(t *testing.T) {
	t.Run("implements suture.Service", func(t *testing.T) {
		var _ suture.Service = (*PollerService)(nil)
	})
}

func TestPollerService(t *testing.T) {
	t.Run("starts underlying poller", func(t *testing.T) {
		mockMgr := &MockPoller{}
		svc := NewPollerService(mockMgr)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- svc.Serve(ctx)
		}()

		// Wait for service to start with polling (more reliable in CI under load)
		var started bool
		for i := 0; i < 10; i++ {
			time.Sleep(20 * time.Millisecond)
			if mockMgr.started.Load() {
				started = true
				break
			}
		}
		if !started {
			t.Error("poller was not started")
		}

		// Let context expire
		<-done
	})

	t.Run("stops poller on context cancellation", func(t *testing.T) {
		mockMgr := &MockPoller{}
		svc := NewPollerService(mockMgr)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- svc.Serve(ctx)
		}()

		// Wait for start with polling (more reliable in CI under load)
		for i := 0; i < 10; i++ {
			time.Sleep(20 * time.Millisecond)
			if mockMgr.started.Load() {
				break
			}
		}
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Error("service did not stop in time")
		}

		if !mockMgr.stopped.Load() {
			t.Error("poller was not stopped")
		}
	})

	t.Run("propagates start error for restart", func(t *testing.T) {
		expectedErr := errors.New("poller already running")
		mockMgr := &MockPoller{
			startError: expectedErr,
		}
		svc := NewPollerService(mockMgr)

		err := svc.Serve(context.Background())
		if err == nil {
			t.Error("expected error to be propagated")
		}
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected wrapped start error, got %v", err)
		}

		// Poller should not be marked as started
		if mockMgr.started.Load() {
			t.Error("poller should not be started on error")
		}
	})

	t.Run("handles stop error gracefully", func(t *testing.T) {
		mockMgr := &MockPoller{
			stopError: errors.New("stop failed"),
		}
		svc := NewPollerService(mockMgr)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- svc.Serve(ctx)
		}()

		// Wait for start with polling (more reliable in CI under load)
		for i := 0; i < 10; i++ {
			time.Sleep(20 * time.Millisecond)
			if mockMgr.started.Load() {
				break
			}
		}
		cancel()

		err := <-done
		// Should still get an error (wrapped stop error)
		if err == nil {
			t.Error("expected error from stop failure")
		}
	})

	t.Run("String returns service name", func(t *testing.T) {
		svc := NewPollerService(&MockPoller{})
		if svc.String() != "ingest-poller" {
			t.Errorf("expected 'ingest-poller', got %q", svc.String())
		}
	})
}

func TestPollerServiceWithSupervisor(t *testing.T) {
	t.Run("supervisor restarts on start failure", func(t *testing.T) {
		startCount := atomic.Int32{}

		mockMgr := &restartableMockPoller{
			startCount: &startCount,
			failUntil:  2, // Fail first 2 starts
		}
		svc := NewPollerService(mockMgr)

		sup := suture.New("poller-test", suture.Spec{
			FailureThreshold: 10,
			FailureBackoff:   10 * time.Millisecond,
			Timeout:          100 * time.Millisecond,
		})
		sup.Add(svc)

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		go func() {
			if err := sup.Serve(ctx); err != nil && err != context.DeadlineExceeded && err != context.Canceled {
				t.Logf("Supervisor serve error (expected during test): %v", err)
			}
		}()
		time.Sleep(200 * time.Millisecond)

		// Should have been started at least 3 times (2 failures + 1 success)
		if startCount.Load() < 3 {
			t.Errorf("expected at least 3 start attempts, got %d", startCount.Load())
		}
	})
}

// restartableMockPoller fails the first N starts, then succeeds
type restartableMockPoller struct {
	startCount *atomic.Int32
	stopCount  atomic.Int32
	failUntil  int32
}

func (m *restartableMockPoller) Start(ctx context.Context) error {
	count := m.startCount.Add(1)
	if count <= m.failUntil {
		return errors.New("simulated start failure")
	}
	return nil
}

func (m *restartableMockPoller) Stop() error {
	m.stopCount.Add(1)
	return nil
}
