package cache

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Key is the canonical form of a source image URL
type Key string

// Entry is a decoded image stored against a Key
type Entry struct {
	Data        []byte    `json:"-"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	ContentType string    `json:"content_type"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Size returns the payload length in bytes
func (e *Entry) Size() int {
	return len(e.Data)
}

type Cache interface {
	Get(key Key) (*Entry, bool)
	Set(key Key, entry *Entry) // Last write wins
	Has(key Key) bool
	Len() int
	Clear()
}

// KeyFromURL canonicalises u. Scheme and host are case-insensitive, the rest
// of the URL is kept as given.
func KeyFromURL(u *url.URL) Key {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	return Key(c.String())
}

// ParseKey parses raw and returns its canonical key
func ParseKey(raw string) (Key, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	return KeyFromURL(u), nil
}

func (k Key) String() string {
	return string(k)
}
