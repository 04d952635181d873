// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// cleanupInterval is how often expired entries are swept.
const cleanupInterval = 5 * time.Minute

// entry is a node of the recency list.
type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *entry
	next      *entry
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Memory is a thread-safe in-process cache with per-entry TTLs and
// optional least-recently-used eviction once MaxEntries is reached.
//
// Memory does not survive restarts and is not shared between replicas;
// use Badger or Redis for that.
type Memory struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry

	// head.next is the most recently used, tail.prev the least.
	head *entry
	tail *entry

	stats Stats
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory creates an in-memory cache. A capacity of 0 means unbounded.
// It starts a background goroutine that sweeps expired entries every five
// minutes until Close is called.
func NewMemory(capacity int) *Memory {
	m := newMemory(capacity, time.Now)
	go m.cleanupLoop()
	return m
}

func newMemory(capacity int, now func() time.Time) *Memory {
	if capacity < 0 {
		capacity = 0
	}
	m := &Memory{
		capacity: capacity,
		items:    make(map[string]*entry),
		head:     &entry{},
		tail:     &entry{},
		now:      now,
		stop:     make(chan struct{}),
	}
	m.head.next = m.tail
	m.tail.prev = m.head
	m.stats.LastCleanup = now()
	return m
}

// Get returns the value for key. Expired entries are removed and count as
// misses. The returned slice must not be modified.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		m.stats.Misses++
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.removeEntry(e)
		m.stats.Misses++
		m.stats.Evictions++
		return nil, false, nil
	}

	m.moveToFront(e)
	m.stats.Hits++
	return e.value, true, nil
}

// Set stores a copy of value for ttl, evicting the least recently used
// entry when the cache is full.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := append([]byte(nil), value...)

	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := m.now().Add(ttl)
	if e, ok := m.items[key]; ok {
		e.value = data
		e.expiresAt = expiresAt
		m.moveToFront(e)
		return nil
	}

	e := &entry{key: key, value: data, expiresAt: expiresAt}
	m.addToFront(e)
	m.items[key] = e

	for m.capacity > 0 && len(m.items) > m.capacity {
		m.removeEntry(m.tail.prev)
		m.stats.Evictions++
	}
	m.stats.TotalKeys = int64(len(m.items))
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix.
func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.items {
		if strings.HasPrefix(key, prefix) {
			m.removeEntry(e)
			m.stats.Evictions++
		}
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not
// yet swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// GetStats returns a snapshot of cache statistics.
func (m *Memory) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// HitRate returns the cache hit rate as a percentage
func (m *Memory) HitRate() float64 {
	stats := m.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background cleanup goroutine.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup removes all expired entries and returns how many were removed.
func (m *Memory) cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for e := m.tail.prev; e != m.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			m.removeEntry(e)
			removed++
		}
		e = prev
	}

	m.stats.Evictions += int64(removed)
	m.stats.LastCleanup = now
	return removed
}

// Internal list methods (must be called with lock held)

func (m *Memory) addToFront(e *entry) {
	e.prev = m.head
	e.next = m.head.next
	m.head.next.prev = e
	m.head.next = e
}

func (m *Memory) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	m.addToFront(e)
}

func (m *Memory) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(m.items, e.key)
	m.stats.TotalKeys = int64(len(m.items))
}

var _ recommend.Cache = (*Memory)(nil)
