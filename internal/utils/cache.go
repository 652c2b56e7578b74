package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem[V any] struct {
	data      V
	expiresAt time.Time
}

// TTLCache LRU 缓存, entries also expire after a TTL
type TTLCache[V any] struct {
	lru *lru.Cache[string, cacheItem[V]]
	now func() time.Time
}

// NewTTLCache creates a cache holding at most size entries.
func NewTTLCache[V any](size int) (*TTLCache[V], error) {
	l, err := lru.New[string, cacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache[V]{lru: l, now: time.Now}, nil
}

// Set stores data under key for ttl.
func (c *TTLCache[V]) Set(key string, data V, ttl time.Duration) {
	c.lru.Add(key, cacheItem[V]{
		data:      data,
		expiresAt: c.now().Add(ttl),
	})
}

// Get returns the cached value, or false when missing or expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}

	if c.now().After(val.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}

	return val.data, true
}

func (c *TTLCache[V]) Delete(key string) {
	c.lru.Remove(key)
}

func (c *TTLCache[V]) Len() int {
	return c.lru.Len()
}
