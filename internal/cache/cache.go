// Package cache is a TTL cache for collaborator results. It is an explicit
// object passed into each stage, never ambient state, so stages stay testable
// with injected fakes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

type item struct {
	value     interface{}
	expiresAt time.Time
}

type Cache struct {
	mu    sync.RWMutex
	items map[string]item
}

func New() *Cache {
	return &Cache{
		items: make(map[string]item),
	}
}

func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	it, exists := c.items[key]
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}

	if time.Now().After(it.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}

	return it.value, true
}

// Cleanup drops expired entries. Long-lived callers run it periodically.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
		}
	}
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// KeyForText hashes a free-form text, for embedding results.
func KeyForText(text string) string {
	h := sha256.Sum256([]byte(text))
	return "text:" + hex.EncodeToString(h[:])
}

// KeyForArticleSet builds the clustering cache key: the scope (entity name)
// plus the sorted set of article URLs, so the same input set hits the same
// entry regardless of article order.
func KeyForArticleSet(scope string, urls []string) string {
	sorted := append([]string(nil), urls...)
	sort.Strings(sorted)
	h := sha256.Sum256([]byte(scope + "\x00" + strings.Join(sorted, "\x00")))
	return "set:" + hex.EncodeToString(h[:])
}
