package cache

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEntry(payload string) *Entry {
	return &Entry{
		Data:        []byte(payload),
		Width:       4,
		Height:      3,
		ContentType: "image/png",
		FetchedAt:   time.Date(2024, 1, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseKey(t *testing.T) {
	a, err := ParseKey("HTTPS://Example.COM/a.png")
	require.NoError(t, err)
	b, err := ParseKey("https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "https://example.com/a.png", a.String())

	// Paths are case-sensitive
	c, err := ParseKey("https://example.com/A.png")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = ParseKey("http://[::1")
	assert.Error(t, err)
}

func TestKeyFromURLDoesNotMutate(t *testing.T) {
	u, err := url.Parse("HTTP://HOST/x?q=1")
	require.NoError(t, err)

	key := KeyFromURL(u)
	assert.Equal(t, Key("http://host/x?q=1"), key)
	assert.Equal(t, "HOST", u.Host)
}

func testStore(t *testing.T, c Cache) {
	t.Helper()

	k1 := Key("https://example.com/a.png")
	k2 := Key("https://example.com/b.png")

	_, ok := c.Get(k1)
	assert.False(t, ok)
	assert.False(t, c.Has(k1))

	c.Set(k1, newEntry("first"))
	got, ok := c.Get(k1)
	require.True(t, ok)
	assert.Equal(t, []byte("first"), got.Data)
	assert.Equal(t, 4, got.Width)
	assert.Equal(t, 3, got.Height)
	assert.Equal(t, "image/png", got.ContentType)
	assert.True(t, c.Has(k1))

	// Distinct keys never collide
	assert.False(t, c.Has(k2))

	c.Set(k1, newEntry("second"))
	got, ok = c.Get(k1)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got.Data)
	assert.Equal(t, 1, c.Len())

	c.Set(k2, newEntry("other"))
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.False(t, c.Has(k1))
	assert.False(t, c.Has(k2))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache(t *testing.T) {
	testStore(t, NewMemoryCache())
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	testStore(t, c)
}

func TestFileCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	key := Key("https://example.com/a.png")

	c, err := NewFileCache(dir)
	require.NoError(t, err)
	c.Set(key, newEntry("payload"))

	reopened, err := NewFileCache(dir)
	require.NoError(t, err)
	got, ok := reopened.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got.Data)
	assert.True(t, got.FetchedAt.Equal(newEntry("").FetchedAt))
}

func TestBoundedCache(t *testing.T) {
	c, err := NewBoundedCache(100)
	require.NoError(t, err)

	key := Key("https://example.com/a.png")
	c.Set(key, newEntry("first"))

	assert.Eventually(t, func() bool { return c.Has(key) }, time.Second, 10*time.Millisecond)
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("first"), got.Data)
	assert.False(t, c.Has(Key("https://example.com/b.png")))

	c.Clear()
	assert.False(t, c.Has(key))
}

func TestBoundedCacheRejectsZeroSize(t *testing.T) {
	_, err := NewBoundedCache(0)
	assert.Error(t, err)
}

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()
	key := Key("https://example.com/a.png")
	c.Set(key, newEntry("x"))
	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.False(t, c.Has(key))
	assert.Equal(t, 0, c.Len())
}

func TestNewCache(t *testing.T) {
	log := zap.NewNop()

	c, err := NewCache("memory", "", 0, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = NewCache("bounded", "", 10, log)
	require.NoError(t, err)
	assert.IsType(t, &BoundedCache{}, c)

	c, err = NewCache("file", t.TempDir(), 0, log)
	require.NoError(t, err)
	assert.IsType(t, &FileCache{}, c)

	c, err = NewCache("disabled", "", 0, log)
	require.NoError(t, err)
	assert.IsType(t, &NoopCache{}, c)

	_, err = NewCache("redis", "", 0, log)
	assert.ErrorContains(t, err, "unknown cache type")
}
