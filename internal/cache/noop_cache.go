package cache

// NoopCache never stores anything, so every lookup is a miss
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(key Key) (*Entry, bool) {
	return nil, false
}

func (c *NoopCache) Set(key Key, entry *Entry) {
}

func (c *NoopCache) Has(key Key) bool {
	return false
}

func (c *NoopCache) Len() int {
	return 0
}

func (c *NoopCache) Clear() {
}
