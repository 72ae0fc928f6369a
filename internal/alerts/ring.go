// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package alerts

import (
	"sync"

	"github.com/tomtom215/aetherwatch/internal/models"
)

const defaultRingCapacity = 200

// Ring is a fixed-capacity alert log. Once full, each append overwrites the
// oldest entry; the buffer never grows past its capacity.
type Ring struct {
	mu   sync.RWMutex
	buf  []models.AlertRecord
	head int
	size int
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	return &Ring{buf: make([]models.AlertRecord, capacity)}
}

// Append adds a record, dropping the oldest entry when full.
func (r *Ring) Append(rec models.AlertRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.head] = rec
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// Recent returns up to limit records, newest first. limit <= 0 returns
// everything held.
func (r *Ring) Recent(limit int) []models.AlertRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.size
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]models.AlertRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (r.head - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

// Len returns the number of records currently held.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Clear empties the buffer.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.head = 0
	r.size = 0
	for i := range r.buf {
		r.buf[i] = models.AlertRecord{}
	}
}
