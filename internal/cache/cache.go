package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"newsagg/internal/config"

	"github.com/patrickmn/go-cache"
)

// Cache stores serialized responses by key
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Health(ctx context.Context) map[string]interface{}
	Close() error
}

// New builds the cache backend selected by cfg.Driver
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Driver {
	case "", "memory":
		log.Printf("Using in-memory feed cache (ttl %v)", cfg.FeedTTL)
		return NewManager(cfg.FeedTTL), nil
	case "redis":
		return NewRedisCache(cfg)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// Manager is the in-process cache backend
type Manager struct {
	cache *cache.Cache
	mu    sync.RWMutex
}

func NewManager(defaultTTL time.Duration) *Manager {
	return &Manager{
		cache: cache.New(defaultTTL, 10*time.Minute),
	}
}

func (m *Manager) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cached, found := m.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	data, ok := cached.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("cached value for %s is %T, not bytes", key, cached)
	}
	return data, true, nil
}

// Set stores a copy of value; a zero ttl uses the manager default
func (m *Manager) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl == 0 {
		ttl = cache.DefaultExpiration
	}
	m.cache.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Flush()
}

func (m *Manager) Health(_ context.Context) map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"type":      "memory",
		"key_count": m.cache.ItemCount(),
	}
}

func (m *Manager) Close() error {
	m.Flush()
	return nil
}
