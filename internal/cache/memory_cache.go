package cache

import (
	"sync"
)

// MemoryCache is an unbounded in-memory store. Entries live as long as the
// cache itself; nothing is ever evicted.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[Key]*Entry
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[Key]*Entry),
	}
}

func (c *MemoryCache) Has(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.items[key]
	return ok
}

func (c *MemoryCache) Get(key Key) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.items[key]
	return entry, ok
}

func (c *MemoryCache) Set(key Key, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[Key]*Entry)
}
