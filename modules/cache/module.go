package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Module provides the cache as a mono module. With a Redis address it runs
// against Redis; without one it falls back to the in-memory backend, the
// same way the rest of the application degrades when external services are
// not configured.
type Module struct {
	cache     *Cache
	client    *redis.Client
	redisAddr string
	prefix    string
	ttl       time.Duration
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a cache module. An empty redisAddr selects the
// in-memory backend.
func NewModule(redisAddr string, prefix string, ttl time.Duration) *Module {
	return &Module{
		redisAddr: redisAddr,
		prefix:    prefix,
		ttl:       ttl,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Start connects the backend.
func (m *Module) Start(_ context.Context) error {
	if m.redisAddr == "" {
		m.cache = New(NewMemoryBackend(), m.prefix, m.ttl)
		log.Println("[cache] No REDIS_ADDR configured - using in-memory backend")
		return nil
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         m.redisAddr,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.client.Ping(ctx).Err(); err != nil {
		// Degrade instead of failing startup; the UI keeps working without
		// a cache the same way it does without a database.
		log.Printf("[cache] Redis at %s unreachable (%v) - using in-memory backend", m.redisAddr, err)
		_ = m.client.Close()
		m.client = nil
		m.cache = New(NewMemoryBackend(), m.prefix, m.ttl)
		return nil
	}

	m.cache = New(NewRedisBackend(m.client), m.prefix, m.ttl)
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)", m.redisAddr, m.prefix, m.ttl)
	return nil
}

// Stop closes the Redis connection if one was opened.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			return fmt.Errorf("failed to close Redis connection: %w", err)
		}
	}
	log.Println("[cache] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.cache == nil {
		return mono.HealthStatus{Healthy: false, Message: "cache not initialized"}
	}
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("backend ping failed: %v", err)}
	}
	backend := "memory"
	if m.client != nil {
		backend = "redis"
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend": backend,
			"stats":   m.cache.StatsSnapshot(),
		},
	}
}

// Cache returns the cache instance for other modules to use.
func (m *Module) Cache() *Cache {
	return m.cache
}
