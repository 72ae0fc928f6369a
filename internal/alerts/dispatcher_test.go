// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package alerts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/aetherwatch/internal/config"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/models"
)

func TestMain(m *testing.M) {
	logging.SetLogger(logging.NewTestLogger(io.Discard))
	os.Exit(m.Run())
}

type fakeNotifier struct {
	name    string
	enabled bool
	err     error

	mu    sync.Mutex
	sent  []models.AlertRecord
	fired chan struct{}
}

func newFakeNotifier(name string, enabled bool, err error) *fakeNotifier {
	return &fakeNotifier{name: name, enabled: enabled, err: err, fired: make(chan struct{}, 16)}
}

func (f *fakeNotifier) Name() string  { return f.name }
func (f *fakeNotifier) Enabled() bool { return f.enabled }

func (f *fakeNotifier) Send(_ context.Context, rec *models.AlertRecord) error {
	f.mu.Lock()
	f.sent = append(f.sent, *rec)
	f.mu.Unlock()
	f.fired <- struct{}{}
	return f.err
}

func (f *fakeNotifier) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func waitFired(t *testing.T, f *fakeNotifier) {
	t.Helper()
	select {
	case <-f.fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("notifier %s never fired", f.name)
	}
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	recs []models.AlertRecord
}

func (b *fakeBroadcaster) BroadcastAlert(rec models.AlertRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recs = append(b.recs, rec)
}

func TestDispatchAlwaysAppendsToRing(t *testing.T) {
	d := NewDispatcher(20)

	rec := d.Dispatch(context.Background(), models.AlertCritical, "Aviation", "squawk 7700", map[string]interface{}{"icao24": "abc123"})

	if rec.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("record has zero id")
	}
	if rec.Timestamp.IsZero() {
		t.Error("record has zero timestamp")
	}
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", d.Len())
	}
	got := d.Recent(1)
	if got[0].ID != rec.ID || got[0].Message != "squawk 7700" {
		t.Errorf("Recent(1)[0] = %+v", got[0])
	}
}

func TestDispatchSeverityMapping(t *testing.T) {
	tests := []struct {
		level     models.AlertLevel
		wantLevel string
	}{
		{models.AlertCritical, `"level":"error"`},
		{models.AlertWarning, `"level":"warn"`},
		{models.AlertAnomaly, `"level":"warn"`},
		{models.AlertInfo, `"level":"info"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			var buf bytes.Buffer
			logging.SetLogger(logging.NewTestLogger(&buf))
			defer logging.SetLogger(logging.NewTestLogger(io.Discard))

			d := NewDispatcher(10)
			d.Dispatch(context.Background(), tt.level, "test", "message", nil)

			if !strings.Contains(buf.String(), tt.wantLevel) {
				t.Errorf("log output %q missing %s", buf.String(), tt.wantLevel)
			}
		})
	}
}

func TestDispatchInvalidLevelDowngradesToInfo(t *testing.T) {
	d := NewDispatcher(10)

	rec := d.Dispatch(context.Background(), models.AlertLevel("BOGUS"), "test", "msg", nil)
	if rec.Level != models.AlertInfo {
		t.Errorf("Level = %q, want INFO", rec.Level)
	}
}

func TestDispatchWithForwardsOnlyRequestedChannels(t *testing.T) {
	email := newFakeNotifier(ChannelEmail, true, nil)
	sms := newFakeNotifier(ChannelSMS, true, nil)
	d := NewDispatcher(10, email, sms)

	d.DispatchWith(context.Background(), models.AlertCritical, "test", "msg", nil, DispatchOpts{Email: true})
	waitFired(t, email)

	if email.sendCount() != 1 {
		t.Errorf("email sends = %d, want 1", email.sendCount())
	}
	if sms.sendCount() != 0 {
		t.Errorf("sms sends = %d, want 0 (not requested)", sms.sendCount())
	}
}

func TestDispatchSkipsDisabledChannel(t *testing.T) {
	email := newFakeNotifier(ChannelEmail, false, nil)
	d := NewDispatcher(10, email)

	d.DispatchWith(context.Background(), models.AlertCritical, "test", "msg", nil, DispatchOpts{Email: true})

	// Give a would-be goroutine a beat to fire.
	time.Sleep(50 * time.Millisecond)
	if email.sendCount() != 0 {
		t.Errorf("disabled channel sent %d times", email.sendCount())
	}
	if d.Len() != 1 {
		t.Error("ring write skipped for disabled channel")
	}
}

func TestDispatchChannelFailureDoesNotPropagate(t *testing.T) {
	email := newFakeNotifier(ChannelEmail, true, errors.New("smtp down"))
	d := NewDispatcher(10, email)

	rec := d.DispatchWith(context.Background(), models.AlertWarning, "test", "msg", nil, DispatchOpts{Email: true})
	waitFired(t, email)

	if rec.Message != "msg" {
		t.Error("dispatch result corrupted by channel failure")
	}
	if d.Len() != 1 {
		t.Error("ring write lost on channel failure")
	}
}

func TestDispatchBroadcasts(t *testing.T) {
	b := &fakeBroadcaster{}
	d := NewDispatcher(10)
	d.AttachBroadcaster(b)

	rec := d.Dispatch(context.Background(), models.AlertAnomaly, "Vision", "crowd detected", nil)

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.recs) != 1 || b.recs[0].ID != rec.ID {
		t.Errorf("broadcast recs = %+v", b.recs)
	}
}

func TestDispatcherRingDiscipline(t *testing.T) {
	d := NewDispatcher(10)
	for i := 0; i < 15; i++ {
		d.Dispatch(context.Background(), models.AlertInfo, "test", "m", nil)
	}

	if d.Len() != 10 {
		t.Errorf("Len() = %d, want capacity 10", d.Len())
	}

	d.Clear()
	if d.Len() != 0 {
		t.Errorf("Len() after Clear = %d", d.Len())
	}
}

func TestNewDispatcherDropsNilNotifiers(t *testing.T) {
	d := NewDispatcher(10, nil, NewEmailNotifier(config.EmailConfig{}))

	if len(d.notifiers) != 1 {
		t.Errorf("notifiers = %d, want 1", len(d.notifiers))
	}
}
