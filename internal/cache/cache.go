// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

// Package cache provides a bounded, TTL-aware, LRU-evicting in-memory cache.
//
// One Cache instance exists per data domain (aviation, satellite, camera),
// each sized and timed independently since their refresh rates differ by an
// order of magnitude. Expiry is lazy: expired entries are treated as absent
// on read and removed when encountered, never purged on a schedule.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aetherwatch/internal/metrics"
)

// entry is a node in the doubly-linked LRU list.
// head.next is the most recently used, tail.prev the least.
type entry struct {
	key       string
	value     interface{}
	prev      *entry
	next      *entry
	expiresAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Keys      int
}

// Cache is a thread-safe in-memory cache bounded by both capacity (LRU
// eviction) and per-entry TTL (lazy expiry), whichever triggers first.
//
// All operations are O(1). Get promotes the entry to most recently used.
type Cache struct {
	mu sync.Mutex

	name     string
	capacity int
	ttl      time.Duration

	items map[string]*entry
	head  *entry
	tail  *entry

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache with the given name (used as the metrics label),
// capacity, and default TTL.
//
//	aviationCache := cache.New("aviation", 10, 15*time.Second)
//	aviationCache.Set(key, aircraft)
//	if v, ok := aviationCache.Get(key); ok { ... }
func New(name string, capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &Cache{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Name returns the cache's metrics label.
func (c *Cache) Name() string { return c.name }

// Get retrieves a value by key. An expired entry counts as a miss and is
// removed on the spot.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.recordMiss()
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.moveToFront(e)
	c.recordHit()
	return e.value, true
}

// Set stores a value with the cache's default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL. If the cache is at capacity
// the least recently used entry is evicted.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.items)))
}

// GetOrFetch returns the cached value for key, or runs fetch, stores its
// result, and returns it. The fetch runs outside the cache lock, so two
// concurrent callers may both fetch; last writer wins, which is acceptable
// for snapshot data that is rebuilt every cycle anyway.
//
// A fetch error is returned unchanged and nothing is stored.
func (c *Cache) GetOrFetch(key string, fetch func() (interface{}, error)) (interface{}, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	v, err := fetch()
	if err != nil {
		return nil, false, err
	}
	c.Set(key, v)
	return v, false, nil
}

// Invalidate removes a single entry. Safe to call for absent keys.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
		c.recordEviction()
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := len(c.items)
	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head

	c.evictions += uint64(evicted)
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(evicted))
	metrics.CacheSize.WithLabelValues(c.name).Set(0)
}

// Len returns the current number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CleanupExpired removes all expired entries and returns how many were
// removed. Expiry is otherwise lazy; this exists for callers that want to
// reclaim memory eagerly.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeEntry(e)
			c.recordEviction()
			removed++
		}
		e = prev
	}
	return removed
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Keys:      len(c.items),
	}
}

// HitRate returns the hit percentage over the cache's lifetime.
func (c *Cache) HitRate() float64 {
	s := c.Stats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Internal list operations (must be called with mu held)

func (c *Cache) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *Cache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *Cache) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.items)))
}

func (c *Cache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
	c.recordEviction()
}

func (c *Cache) recordHit() {
	c.hits++
	metrics.CacheHits.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordMiss() {
	c.misses++
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordEviction() {
	c.evictions++
	metrics.CacheEvictions.WithLabelValues(c.name).Inc()
}

// GenerateKey creates a deterministic cache key from a method name and its
// parameters by hashing the JSON encoding. Falls back to fmt formatting for
// unmarshalable params.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
