// Package cache provides the process-wide LRU+TTL map shared by the vision
// and enrichment components. Keys are content-derived strings; expired
// entries are removed at read time and the least recently used entry is
// evicted on insertion overflow.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultMaxSize bounds the cache when no explicit size is configured.
const DefaultMaxSize = 1000

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Cache is an in-memory LRU map with per-entry TTL. Safe for concurrent
// use; the pipeline shares one instance across components.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	now     func() time.Time
}

// New creates a cache bounded to maxSize entries. Sizes below 1 fall back
// to DefaultMaxSize.
func New(maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Get returns the cached value for key, or (nil, false) if absent or
// expired. A hit moves the key to most recently used.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.order.Remove(el)
		delete(c.items, key)
		return nil, false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

// Set stores value under key for ttl. Replacing an existing key refreshes
// its TTL and recency. When the insert overflows maxSize the least
// recently used entry is evicted.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(ttl)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expires
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: value, expiresAt: expires})
	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// Len reports the number of entries currently held, including entries that
// have expired but not yet been read.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
