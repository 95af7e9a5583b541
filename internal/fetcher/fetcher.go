// Package fetcher downloads image payloads over HTTP.
//
// A fetch is a single unconditional GET: no custom headers, the client's
// default redirect policy and no authentication. The response status is not
// inspected unless StrictStatus is enabled, so an error page that happens to
// carry image bytes is treated like a 200.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/dnscache"
)

type Options struct {
	// Timeout for the whole request. Zero keeps the transport defaults.
	Timeout time.Duration
	// StrictStatus makes non-2xx responses fail with *StatusError
	StrictStatus bool
	// MaxBodyBytes caps the payload size. Zero means unlimited.
	MaxBodyBytes int64
}

type Fetcher struct {
	client *http.Client
	opts   Options
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError is returned for non-2xx responses when StrictStatus is set
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// ErrBodyTooLarge is returned when a payload exceeds MaxBodyBytes
var ErrBodyTooLarge = errors.New("response body too large")

func New(client *http.Client, opts Options) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, opts: opts}
}

// NewClient builds an *http.Client on a tuned transport. When resolver is not
// nil host lookups go through the DNS cache.
func NewClient(resolver *dnscache.Resolver, timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if resolver != nil {
		t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var d net.Dialer
			var lastErr error
			for _, ip := range ips {
				conn, err := d.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			return nil, lastErr
		}
	}

	return &http.Client{
		Transport: t,
		Timeout:   timeout,
	}
}

// Fetch performs a GET against rawURL and returns the complete body
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if f.opts.StrictStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if f.opts.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if f.opts.MaxBodyBytes > 0 && int64(len(data)) > f.opts.MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// RefreshDNS periodically refreshes the resolver cache until ctx is done
func RefreshDNS(ctx context.Context, resolver *dnscache.Resolver, interval time.Duration) {
	if resolver == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resolver.Refresh(true)
		}
	}
}
