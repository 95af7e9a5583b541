// Package loader implements the image fetch cache: return a decoded image for
// a URL, from the cache when allowed and present, otherwise by downloading and
// decoding it and storing the result for next time.
package loader

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fastimage/internal/cache"
	"fastimage/internal/decoder"
	"fastimage/internal/fetcher"
	"fastimage/internal/telemetry"
)

// Fetcher downloads the full body behind a URL
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Response, error)
}

type Loader struct {
	store   cache.Cache
	fetcher Fetcher
	decoder decoder.Decoder
	logger  *zap.Logger
	metrics *telemetry.Metrics
	group   *singleflight.Group
}

type Option func(*Loader)

func WithMetrics(m *telemetry.Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// WithSingleFlight makes concurrent cache-enabled fetches of the same key
// share one download. Without it every miss downloads independently and the
// last one to finish wins the cache write.
func WithSingleFlight() Option {
	return func(l *Loader) {
		l.group = &singleflight.Group{}
	}
}

func New(store cache.Cache, f Fetcher, d decoder.Decoder, logger *zap.Logger, opts ...Option) *Loader {
	l := &Loader{
		store:   store,
		fetcher: f,
		decoder: d,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch returns the decoded image behind rawURL. With useCache a stored entry
// is returned without any I/O. A successful download is always stored, even
// when useCache is false.
func (l *Loader) Fetch(ctx context.Context, rawURL string, useCache bool) (*cache.Entry, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return l.FetchURL(ctx, u, useCache)
}

func (l *Loader) FetchURL(ctx context.Context, u *url.URL, useCache bool) (*cache.Entry, error) {
	if err := validateURL(u); err != nil {
		return nil, err
	}

	key := cache.KeyFromURL(u)

	if !useCache {
		l.metrics.Lookup(telemetry.LookupBypass)
		return l.download(ctx, u, key)
	}

	if entry, ok := l.store.Get(key); ok {
		l.metrics.Lookup(telemetry.LookupHit)
		l.logger.Debug("Image cache hit", zap.String("key", key.String()))
		return entry, nil
	}
	l.metrics.Lookup(telemetry.LookupMiss)

	if l.group == nil {
		return l.download(ctx, u, key)
	}

	v, err, shared := l.group.Do(key.String(), func() (interface{}, error) {
		// Another flight may have stored it between our lookup and now
		if entry, ok := l.store.Get(key); ok {
			return entry, nil
		}
		return l.download(ctx, u, key)
	})
	if shared {
		l.metrics.Fetch(telemetry.OutcomeShared, 0)
	}
	if err != nil {
		return nil, err
	}
	return v.(*cache.Entry), nil
}

// Peek returns the stored entry for rawURL without any network access
func (l *Loader) Peek(rawURL string) (*cache.Entry, bool) {
	key, err := cache.ParseKey(rawURL)
	if err != nil {
		return nil, false
	}
	return l.store.Get(key)
}

func (l *Loader) download(ctx context.Context, u *url.URL, key cache.Key) (*cache.Entry, error) {
	start := time.Now()
	target := u.String()

	resp, err := l.fetcher.Fetch(ctx, target)
	if err != nil {
		l.metrics.Fetch(telemetry.OutcomeTransport, time.Since(start).Seconds())
		l.logger.Warn("Image download failed", zap.String("url", target), zap.Error(err))
		return nil, &TransportError{URL: target, Err: err}
	}

	img, err := l.decoder.Decode(resp.Body)
	if err != nil {
		l.metrics.Fetch(telemetry.OutcomeInvalidImage, time.Since(start).Seconds())
		l.logger.Warn("Downloaded payload is not an image",
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes", len(resp.Body)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImageData, target, err)
	}

	entry := &cache.Entry{
		Data:        resp.Body,
		Width:       img.Width,
		Height:      img.Height,
		ContentType: img.ContentType,
		FetchedAt:   time.Now(),
	}
	l.store.Set(key, entry)

	l.metrics.Fetch(telemetry.OutcomeStored, time.Since(start).Seconds())
	l.metrics.Entries(l.store.Len())
	l.logger.Info("Image stored",
		zap.String("key", key.String()),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Int("bytes", len(resp.Body)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return entry, nil
}

func validateURL(u *url.URL) error {
	if u == nil {
		return fmt.Errorf("%w: nil url", ErrInvalidURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
