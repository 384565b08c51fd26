package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore implements Store on a process-local map with per-entry TTL.
// It is the fallback backend when no Redis address is configured. Values are
// round-tripped through JSON so consumers see the same copy semantics as
// with Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	stats   *stats
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store with the given default TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		stats:   &stats{},
	}
}

// Get retrieves a value, treating expired entries as misses.
func (c *MemoryStore) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if !found || time.Now().After(entry.expiresAt) {
		if found {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		atomic.AddUint64(&c.stats.Misses, 1)
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	atomic.AddUint64(&c.stats.Hits, 1)
	return true, nil
}

// Set stores a value with the default TTL.
func (c *MemoryStore) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *MemoryStore) SetWithTTL(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()

	atomic.AddUint64(&c.stats.Sets, 1)
	return nil
}

// Delete removes a single key.
func (c *MemoryStore) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	atomic.AddUint64(&c.stats.Deletes, 1)
	return nil
}

// DeletePattern removes all keys matching a pattern. Only an exact key or a
// trailing "*" wildcard is supported, which covers the key layouts the
// consumer modules use.
func (c *MemoryStore) DeletePattern(_ context.Context, pattern string) error {
	prefix, wildcard := strings.CutSuffix(pattern, "*")

	c.mu.Lock()
	deleted := 0
	for key := range c.entries {
		if (wildcard && strings.HasPrefix(key, prefix)) || (!wildcard && key == pattern) {
			delete(c.entries, key)
			deleted++
		}
	}
	c.mu.Unlock()

	atomic.AddUint64(&c.stats.Deletes, uint64(deleted))
	return nil
}

// Ping always succeeds for the in-memory backend.
func (c *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Stats returns a snapshot of the counters.
func (c *MemoryStore) Stats() StatsSnapshot {
	return c.stats.snapshot("memory")
}

// sweep removes expired entries. The module runs it periodically.
func (c *MemoryStore) sweep() {
	now := time.Now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of live entries.
func (c *MemoryStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
