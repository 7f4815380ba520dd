// Package gis provides shared HTTP functionality for the external
// geo-data service clients (Nominatim, Overpass). It handles caching,
// retry policies, error classification, and common request headers.
package gis

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mapforge/mapforge/pkg/cache"
	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/httputil"
	"github.com/mapforge/mapforge/pkg/observability"
)

// UserAgent identifies this tool to the public OSM services, which
// require a descriptive agent string from API consumers.
const UserAgent = "mapforge/1.0 (https://github.com/mapforge/mapforge)"

const defaultTimeout = 10 * time.Second

// Client provides shared HTTP functionality for geo-service clients.
// It handles response caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	retry   httputil.Policy
	headers map[string]string
}

// NewClient creates a Client with the given cache backend and retry
// policy. Pass nil for headers if no default headers are needed; the
// User-Agent header is always set.
func NewClient(backend cache.Cache, retry httputil.Policy, timeout time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NullCache{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		cache:   backend,
		retry:   retry,
		headers: headers,
	}
}

// Cached returns the raw response bytes for key from the cache, or runs
// fetch under the client's retry policy and stores the result with the
// given TTL. If refresh is true the cache is bypassed and fetch always
// runs.
func (c *Client) Cached(ctx context.Context, key string, ttl time.Duration, refresh bool, fetch func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, keyType(key))
	}

	var data []byte
	err := c.retry.Do(ctx, func() error {
		var ferr error
		data, ferr = fetch(ctx)
		return ferr
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, data, ttl)
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return data, nil
}

// keyType extracts the operation prefix from a hashed cache key.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

// Get performs an HTTP GET request and returns the response body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "building request")
	}
	return c.do(req)
}

// PostForm performs an HTTP POST with form-encoded values and returns
// the response body.
func (c *Client) PostForm(ctx context.Context, rawURL string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "building request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", UserAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	ctx := req.Context()
	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, req.URL.Host, err)
		return nil, ClassifyTransport(err)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyTransport(err)
	}
	return data, nil
}

// ClassifyTransport maps a transport-level failure onto the error
// taxonomy: deadline and net timeouts become TIMEOUT, everything else a
// CONNECTION_ERROR. Both are transient and wrapped retryable. Plain
// context cancellation passes through untouched so callers can tell a
// user abort from a service failure.
func ClassifyTransport(err error) error {
	if stderrors.Is(err, context.Canceled) {
		return err
	}

	var nerr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &nerr) && nerr.Timeout()) {
		return httputil.Retryable(errors.Wrap(errors.ErrCodeTimeout, err, "request timed out"))
	}
	return httputil.Retryable(errors.Wrap(errors.ErrCodeConnection, err, "connection failed"))
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "resource not found")
	case code == http.StatusTooManyRequests:
		return httputil.Retryable(errors.New(errors.ErrCodeRateLimited, "rate limited by upstream service"))
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeSourceUnavailable, "upstream service error: status %d", code))
	default:
		return errors.New(errors.ErrCodeUnknown, "unexpected status %d", code)
	}
}
