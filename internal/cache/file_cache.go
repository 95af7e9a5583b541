package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileCache implements a file-based cache
// Structure: {cacheDir}/{sha256(key)[:2]}/{sha256(key)}.img plus a .json sidecar
type FileCache struct {
	mu       sync.RWMutex
	cacheDir string
}

type fileMeta struct {
	Key Key `json:"key"`
	Entry
}

func NewFileCache(cacheDir string) (*FileCache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileCache{
		cacheDir: cacheDir,
	}, nil
}

// buildBasePath returns the path of an entry without extension
func (c *FileCache) buildBasePath(key Key) string {
	hash := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(hash[:])
	return filepath.Join(c.cacheDir, name[:2], name)
}

func (c *FileCache) Has(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, err := os.Stat(c.buildBasePath(key) + ".json")
	return err == nil
}

func (c *FileCache) Get(key Key) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	base := c.buildBasePath(key)

	raw, err := os.ReadFile(base + ".json")
	if err != nil {
		return nil, false
	}

	var meta fileMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, false
	}
	// Hash collision or a stale sidecar
	if meta.Key != key {
		return nil, false
	}

	data, err := os.ReadFile(base + ".img")
	if err != nil {
		return nil, false
	}

	entry := meta.Entry
	entry.Data = data
	return &entry, true
}

func (c *FileCache) Set(key Key, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	base := c.buildBasePath(key)
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return
	}

	meta, err := json.MarshalIndent(fileMeta{Key: key, Entry: *entry}, "", "  ")
	if err != nil {
		return
	}

	// Payload first, the sidecar marks the entry as complete
	if err := writeAtomic(base+".img", entry.Data); err != nil {
		return
	}
	writeAtomic(base+".json", meta)
}

func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	filepath.WalkDir(c.cacheDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			count++
		}
		return nil
	})
	return count
}

func (c *FileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(c.cacheDir); err != nil {
		return
	}

	os.MkdirAll(c.cacheDir, 0755)
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
