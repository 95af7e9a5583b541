package cache

import (
	"fmt"

	"github.com/maypok86/otter/v2"
)

// BoundedCache is an in-memory W-TinyLFU cache backed by otter. Unlike
// MemoryCache it evicts once maxEntries is reached.
type BoundedCache struct {
	cache *otter.Cache[Key, *Entry]
}

func NewBoundedCache(maxEntries int) (*BoundedCache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("bounded cache needs a positive size, got %d", maxEntries)
	}

	c, err := otter.New(&otter.Options[Key, *Entry]{
		MaximumSize: maxEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bounded cache: %w", err)
	}

	return &BoundedCache{cache: c}, nil
}

func (c *BoundedCache) Has(key Key) bool {
	_, ok := c.cache.GetIfPresent(key)
	return ok
}

func (c *BoundedCache) Get(key Key) (*Entry, bool) {
	return c.cache.GetIfPresent(key)
}

func (c *BoundedCache) Set(key Key, entry *Entry) {
	c.cache.Set(key, entry)
}

func (c *BoundedCache) Len() int {
	return c.cache.EstimatedSize()
}

func (c *BoundedCache) Clear() {
	c.cache.InvalidateAll()
}
