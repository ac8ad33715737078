package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process TTL cache.
type Memory struct {
	inner *gocache.Cache
}

// NewMemory creates a memory cache with the given default TTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{inner: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	if val, found := m.inner.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	m.inner.Set(key, value, ttl)
}
