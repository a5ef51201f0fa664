// Package cache provides the key/value backends used to memoize rendered
// content lookups.
package cache

import (
	"context"
	"sync"
	"time"
)

// Backend stores opaque values under string keys with a time-to-live.
type Backend interface {
	// Get returns the value for key and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores val under key for ttl. A zero ttl never expires.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Flush removes every key owned by this backend.
	Flush(ctx context.Context) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

type entry struct {
	val     []byte
	expires time.Time
}

func (e entry) fresh(now time.Time) bool {
	return e.expires.IsZero() || now.Before(e.expires)
}

// Memory is an in-process Backend.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

// Name implements Backend.
func (m *Memory) Name() string { return "memory" }

// Get implements Backend.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.fresh(m.now()) {
		m.mu.Lock()
		// re-check: another writer may have refreshed it
		if cur, ok := m.entries[key]; ok && !cur.fresh(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.val, true, nil
}

// Set implements Backend.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := entry{val: val}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Flush implements Backend.
func (m *Memory) Flush(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, fresh or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
