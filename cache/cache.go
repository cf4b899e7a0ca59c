// Package cache provides a small in-process LRU cache with per-entry
// expiry, used to serve hot feed pages without hitting the database.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// item wraps cached data together with its expiry time.
type item struct {
	data      interface{}
	expiresAt time.Time
}

// Cache is an LRU cache whose entries additionally expire after a TTL.
// It is safe for concurrent use.
type Cache struct {
	lru *lru.Cache[string, item]
}

// New returns a Cache holding at most size entries.
func New(size int) (*Cache, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Set stores data under key for the given TTL.
func (c *Cache) Set(key string, data interface{}, ttl time.Duration) {
	c.lru.Add(key, item{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	})
}

// Get returns the data stored under key, or nil if the key is absent
// or the entry has expired.
func (c *Cache) Get(key string) interface{} {
	val, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.expiresAt) {
		c.lru.Remove(key)
		return nil
	}
	return val.data
}

// Delete drops the entry stored under key.
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}
