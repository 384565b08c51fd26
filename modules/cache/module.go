package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Module owns the cache backend lifecycle and hands the Store to dependent
// modules, wired in main.
type Module struct {
	store     Store
	client    *redis.Client
	memory    *MemoryStore
	redisAddr string
	prefix    string
	ttl       time.Duration

	sweepStop chan struct{}
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a cache module. An empty redisAddr selects the
// in-memory backend. The store handle exists immediately so main can
// wire it into dependents before the application starts; the Redis
// client does not dial until Init.
func NewModule(redisAddr, prefix string, ttl time.Duration) *Module {
	m := &Module{
		redisAddr: redisAddr,
		prefix:    prefix,
		ttl:       ttl,
	}
	if redisAddr == "" {
		m.memory = NewMemoryStore(ttl)
		m.store = m.memory
		return m
	}
	m.client = redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	m.store = NewRedisStore(m.client, prefix, ttl)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Init verifies the selected backend is reachable.
func (m *Module) Init(_ mono.ServiceContainer) error {
	if m.client == nil {
		log.Printf("[cache] Using in-memory backend (TTL: %s)", m.ttl)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)", m.redisAddr, m.prefix, m.ttl)
	return nil
}

// Start begins the expiry sweeper for the in-memory backend.
func (m *Module) Start(_ context.Context) error {
	if m.memory != nil {
		m.sweepStop = make(chan struct{})
		go m.runSweeper()
	}
	log.Println("[cache] Module started")
	return nil
}

// Stop closes the backend.
func (m *Module) Stop(_ context.Context) error {
	if m.sweepStop != nil {
		close(m.sweepStop)
	}
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[cache] Error closing Redis connection: %v", err)
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	log.Println("[cache] Module stopped")
	return nil
}

// GetStore returns the cache store for dependent modules.
func (m *Module) GetStore() Store {
	return m.store
}

// Health verifies the backend is reachable.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "cache not initialized",
		}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("cache ping failed: %v", err),
		}
	}
	snap := m.store.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend":  snap.Backend,
			"hit_rate": snap.HitRate,
		},
	}
}

func (m *Module) runSweeper() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.memory.sweep()
		case <-m.sweepStop:
			return
		}
	}
}
