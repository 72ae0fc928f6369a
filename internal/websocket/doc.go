// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

/*
Package websocket pushes live dashboard updates to connected browsers.

The hub-and-spoke model keeps one Hub goroutine coordinating every
connection: the alert dispatcher, the poller and the status reporter
hand it payloads, and the hub fans each one out to all clients. A
client that cannot keep up is dropped rather than allowed to stall the
broadcast loop.

Message envelope: {"type": ..., "data": ...} with types

  - alert: one models.AlertRecord, pushed the moment it is dispatched
  - aircraft: a models.AircraftSnapshot after each poller refresh
  - status: a models.SystemStatus summary
  - ping/pong: application-level keepalive initiated by the client

Each client runs two goroutines: readPump answers pings and refreshes
the read deadline on pongs, writePump serializes hub messages with
goccy/go-json and sends protocol pings every 54s. Dead connections are
detected by the 60s pong deadline.

The hub is a suture service: RunWithContext blocks until the context
is canceled, then closes every client and returns. The API layer owns
the HTTP upgrade (GET /api/v1/ws) and hands the gorilla connection to
NewClient.
*/
package websocket
