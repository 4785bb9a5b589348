package cache

import (
	"context"
	"sync"
	"time"

	"github.com/crucial707/postboard/internal/clock"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store. Expired entries are hidden from Get at once
// and reclaimed by Sweep. Expiry follows the injected clock. Deployments with
// more than one API process should use the Redis store (CACHE_BACKEND=redis).
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	clock clock.Clock
}

// NewMemory returns an empty store; a nil clock means the real clock.
func NewMemory(c clock.Clock) *Memory {
	if c == nil {
		c = clock.NewReal()
	}
	return &Memory{items: make(map[string]memoryEntry), clock: c}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || !m.clock.Now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.items[key] = memoryEntry{value: value, expiresAt: m.clock.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Sweep deletes expired entries and reports how many were removed.
func (m *Memory) Sweep() int {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, e := range m.items {
		if !now.Before(e.expiresAt) {
			delete(m.items, k)
			removed++
		}
	}
	return removed
}

// Len is the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
