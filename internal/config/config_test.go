package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.CacheType)
	assert.Equal(t, "/data/cache", cfg.CacheFileDir)
	assert.Equal(t, "vips", cfg.Decoder)
	assert.False(t, cfg.SingleFlight)
	assert.False(t, cfg.StrictStatus)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Minute, cfg.DNSCacheRefresh)
	assert.Nil(t, cfg.WarmupURLs)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_DIR", "/srv")
	t.Setenv("CACHE", "file")
	t.Setenv("DECODER", "std")
	t.Setenv("SINGLE_FLIGHT", "true")
	t.Setenv("STRICT_STATUS", "1")
	t.Setenv("HTTP_TIMEOUT", "15s")
	t.Setenv("MAX_IMAGE_BYTES", "1048576")
	t.Setenv("WARMUP_URLS", "https://a.example/1.png, https://b.example/2.png\nhttps://c.example/3.png")

	cfg := Load()

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "file", cfg.CacheType)
	assert.Equal(t, "/srv/cache", cfg.CacheFileDir)
	assert.Equal(t, "std", cfg.Decoder)
	assert.True(t, cfg.SingleFlight)
	assert.True(t, cfg.StrictStatus)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, int64(1048576), cfg.MaxImageBytes)
	assert.Equal(t, []string{
		"https://a.example/1.png",
		"https://b.example/2.png",
		"https://c.example/3.png",
	}, cfg.WarmupURLs)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("SINGLE_FLIGHT", "maybe")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.SingleFlight)
	assert.Zero(t, cfg.HTTPTimeout)
}
