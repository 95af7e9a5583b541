package cache

import (
	"fmt"

	"go.uber.org/zap"
)

// NewCache creates a cache instance based on the cache type
func NewCache(cacheType, cacheFileDir string, cacheMaxEntries int, log *zap.Logger) (Cache, error) {
	switch cacheType {
	case "memory", "":
		log.Info("Using unbounded memory cache")
		return NewMemoryCache(), nil
	case "bounded":
		log.Info("Using bounded memory cache", zap.Int("max_entries", cacheMaxEntries))
		return NewBoundedCache(cacheMaxEntries)
	case "file":
		log.Info("Using file cache", zap.String("cache_dir", cacheFileDir))
		return NewFileCache(cacheFileDir)
	case "disabled":
		log.Info("Cache disabled")
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s (supported: memory, bounded, file, disabled)", cacheType)
	}
}
