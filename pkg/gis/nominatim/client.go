// Package nominatim resolves free-form place names to geographic
// coordinates using the public Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mapforge/mapforge/pkg/cache"
	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/geo"
	"github.com/mapforge/mapforge/pkg/gis"
	"github.com/mapforge/mapforge/pkg/httputil"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/search"

// Nominatim asks for a fixed pause between retries rather than
// exponential backoff.
const (
	retryAttempts = 3
	retryDelay    = 2 * time.Second
)

// Client provides access to the Nominatim geocoding API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*gis.Client
	baseURL string
	keys    cache.Keyer
}

// NewClient creates a Nominatim client with the given cache backend.
// Use cache.NullCache{} for no caching. A timeout of zero selects the
// default request timeout.
func NewClient(backend cache.Cache, timeout time.Duration) *Client {
	return &Client{
		Client:  gis.NewClient(backend, httputil.FixedPolicy(retryAttempts, retryDelay), timeout, nil),
		baseURL: defaultBaseURL,
		keys:    cache.NewDefaultKeyer(),
	}
}

// WithBaseURL points the client at a different search endpoint, such as
// a self-hosted Nominatim instance. Empty input keeps the default.
func (c *Client) WithBaseURL(u string) *Client {
	if u != "" {
		c.baseURL = u
	}
	return c
}

// WithKeyer replaces the cache key generator, for example with a
// cache.ScopedKeyer when deployments share a backend. Nil keeps the
// default.
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	if k != nil {
		c.keys = k
	}
	return c
}

// apiResult is one entry of the jsonv2 search response. Nominatim
// serializes coordinates as strings.
type apiResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve geocodes a place name to a coordinate and display address.
//
// If refresh is true, the cache is bypassed and a fresh API call is
// made; otherwise cached results are served for 24 hours.
//
// Classification of failures:
//   - empty input or HTTP 404 or an empty result set → NOT_FOUND, not retried
//   - request timeouts → TIMEOUT, retried with a fixed delay
//   - connection failures → CONNECTION_ERROR, retried
//   - HTTP 429 → RATE_LIMITED, retried
//   - anything else → UNKNOWN
func (c *Client) Resolve(ctx context.Context, place string, refresh bool) (*geo.GeocodeResult, error) {
	if err := errors.ValidatePlaceName(place); err != nil {
		return nil, err
	}
	place = strings.TrimSpace(place)

	key := c.keys.GeocodeKey(strings.ToLower(place))
	data, err := c.Cached(ctx, key, cache.TTLGeocode, refresh, func(ctx context.Context) ([]byte, error) {
		return c.Get(ctx, c.searchURL(place))
	})
	if err != nil {
		return nil, err
	}
	return parseResponse(data, place)
}

func (c *Client) searchURL(place string) string {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	q.Set("accept-language", "en")
	q.Set("addressdetails", "1")
	return fmt.Sprintf("%s?%s", c.baseURL, q.Encode())
}

func parseResponse(data []byte, place string) (*geo.GeocodeResult, error) {
	var results []apiResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknown, err, "decoding geocode response")
	}
	if len(results) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no results for %q", place)
	}

	r := results[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknown, err, "parsing latitude %q", r.Lat)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknown, err, "parsing longitude %q", r.Lon)
	}

	return &geo.GeocodeResult{
		Coordinate: geo.Coordinate{Lat: lat, Lon: lon},
		Address:    r.DisplayName,
	}, nil
}
