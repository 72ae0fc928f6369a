// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package alerts is the single write path for every alert in the system.

Dispatch always appends to a bounded in-memory ring and writes to the log at
a severity mapped from the alert level. Email and SMS forwarding happen only
when a caller asks for them and the channel is configured; channel failures
are logged and never reach the caller.
*/
package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/metrics"
	"github.com/tomtom215/aetherwatch/internal/models"
)

// notifier send deadline, detached from the caller's context so an alert
// fired during request teardown still goes out.
const channelSendTimeout = 30 * time.Second

// Notifier is an outbound alert channel.
type Notifier interface {
	Name() string
	// Enabled reports whether the channel has enough configuration to send.
	Enabled() bool
	Send(ctx context.Context, rec *models.AlertRecord) error
}

// Broadcaster pushes dispatched alerts to connected clients. Implemented by
// the websocket hub; optional.
type Broadcaster interface {
	BroadcastAlert(rec models.AlertRecord)
}

// DispatchOpts selects the outbound channels for one alert. The zero value
// forwards nowhere.
type DispatchOpts struct {
	Email bool
	SMS   bool
}

// Dispatcher fans alerts out to the ring buffer, the log, the websocket
// hub, and any requested notifier channels.
type Dispatcher struct {
	ring      *Ring
	notifiers []Notifier
	broadcast Broadcaster
}

// NewDispatcher builds a dispatcher with the given ring capacity. Nil
// notifiers are dropped.
func NewDispatcher(capacity int, notifiers ...Notifier) *Dispatcher {
	d := &Dispatcher{ring: NewRing(capacity)}
	for _, n := range notifiers {
		if n != nil {
			d.notifiers = append(d.notifiers, n)
		}
	}
	return d
}

// AttachBroadcaster wires the websocket hub in. Call before serving traffic;
// not safe to swap while dispatching.
func (d *Dispatcher) AttachBroadcaster(b Broadcaster) {
	d.broadcast = b
}

// Dispatch records an alert without forwarding to any outbound channel.
func (d *Dispatcher) Dispatch(ctx context.Context, level models.AlertLevel, source, message string, details map[string]interface{}) models.AlertRecord {
	return d.DispatchWith(ctx, level, source, message, details, DispatchOpts{})
}

// DispatchWith records an alert and forwards it to the requested channels.
// The ring append and log write always happen; channel sends run in
// goroutines and their failures are logged, never returned.
func (d *Dispatcher) DispatchWith(ctx context.Context, level models.AlertLevel, source, message string, details map[string]interface{}, opts DispatchOpts) models.AlertRecord {
	if !level.Valid() {
		level = models.AlertInfo
	}

	rec := models.AlertRecord{
		ID:        uuid.New(),
		Level:     level,
		Source:    source,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	d.logRecord(rec)
	d.ring.Append(rec)
	metrics.RecordAlert(string(level), source)

	if d.broadcast != nil {
		d.broadcast.BroadcastAlert(rec)
	}

	for _, n := range d.notifiers {
		if !d.channelRequested(n, opts) || !n.Enabled() {
			continue
		}
		go d.send(n, rec)
	}
	return rec
}

// Recent returns up to limit alerts, newest first.
func (d *Dispatcher) Recent(limit int) []models.AlertRecord {
	return d.ring.Recent(limit)
}

// Clear empties the alert log.
func (d *Dispatcher) Clear() {
	d.ring.Clear()
}

// Len returns the number of alerts currently held.
func (d *Dispatcher) Len() int {
	return d.ring.Len()
}

func (d *Dispatcher) channelRequested(n Notifier, opts DispatchOpts) bool {
	switch n.Name() {
	case ChannelEmail:
		return opts.Email
	case ChannelSMS:
		return opts.SMS
	default:
		return false
	}
}

func (d *Dispatcher) send(n Notifier, rec models.AlertRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), channelSendTimeout)
	defer cancel()

	err := n.Send(ctx, &rec)
	metrics.RecordChannelSend(n.Name(), err)
	if err != nil {
		logging.Error().
			Err(err).
			Str("channel", n.Name()).
			Str("alert_source", rec.Source).
			Msg("Alert channel send failed")
		return
	}
	logging.Info().
		Str("channel", n.Name()).
		Str("alert_source", rec.Source).
		Msg("Alert forwarded")
}

// logRecord writes the alert to the log at the severity mapped from its
// level: CRITICAL logs as error, WARNING and ANOMALY as warn, INFO as info.
func (d *Dispatcher) logRecord(rec models.AlertRecord) {
	var evt = logging.Info()
	switch rec.Level {
	case models.AlertCritical:
		evt = logging.Error()
	case models.AlertWarning, models.AlertAnomaly:
		evt = logging.Warn()
	}
	evt.
		Str("alert_id", rec.ID.String()).
		Str("alert_level", string(rec.Level)).
		Str("alert_source", rec.Source).
		Msg(rec.Message)
}
