// Package overpass fetches routable street networks from the Overpass
// API and materializes them as graphs.
package overpass

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/osm"

	"github.com/mapforge/mapforge/pkg/cache"
	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/geo"
	"github.com/mapforge/mapforge/pkg/gis"
	"github.com/mapforge/mapforge/pkg/httputil"
	"github.com/mapforge/mapforge/pkg/netgraph"
)

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

const (
	retryAttempts = 3
	retryDelay    = time.Second
)

// Client provides access to the Overpass API. It handles HTTP requests
// with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*gis.Client
	baseURL string
	keys    cache.Keyer
}

// NewClient creates an Overpass client with the given cache backend.
// Use cache.NullCache{} for no caching. A timeout of zero selects the
// default request timeout; Overpass queries for a 15 km region can take
// tens of seconds, so callers should pass something generous.
func NewClient(backend cache.Cache, timeout time.Duration) *Client {
	return &Client{
		Client:  gis.NewClient(backend, httputil.ExponentialPolicy(retryAttempts, retryDelay), timeout, nil),
		baseURL: defaultBaseURL,
		keys:    cache.NewDefaultKeyer(),
	}
}

// WithBaseURL points the client at a different interpreter endpoint,
// such as a self-hosted Overpass instance. Empty input keeps the default.
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

// Fetch retrieves the routable network of one category inside the
// region and returns it as a simplified graph. Clipping happens at the
// source via a poly filter, so ways outside the region boundary never
// leave the server.
//
// If refresh is true the cache is bypassed; otherwise raw responses are
// served from cache for one hour, keyed on (boundary hash, category).
//
// Failures:
//   - degenerate boundary or an Overpass polygon complaint → MALFORMED_REGION
//   - no routable ways inside the region → EMPTY_RESULT
//   - 5xx, timeouts, connection failures → SOURCE_UNAVAILABLE / TIMEOUT /
//     CONNECTION_ERROR, retried with backoff
func (c *Client) Fetch(ctx context.Context, region *geo.Region, cat netgraph.Category, refresh bool) (*netgraph.Graph, error) {
	if region == nil || len(region.Boundary()) < 4 {
		return nil, errors.New(errors.ErrCodeMalformedRegion, "region boundary is degenerate")
	}

	poly := polyClause(region)
	key := c.keys.NetworkKey(cache.Hash([]byte(poly)), string(cat))

	data, err := c.Cached(ctx, key, cache.TTLNetwork, refresh, func(ctx context.Context) ([]byte, error) {
		return c.PostForm(ctx, c.baseURL, url.Values{"data": {buildQuery(region, cat)}})
	})
	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return nil, err
		}
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeUnknown
		}
		return nil, errors.Wrap(code, err, "fetching %s network", cat)
	}

	return parse(data, cat)
}

func parse(data []byte, cat netgraph.Category) (*netgraph.Graph, error) {
	var probe struct {
		Remark string `json:"remark"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.Remark != "" {
		return nil, classifyRemark(probe.Remark, cat)
	}

	var o osm.OSM
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknown, err, "decoding %s network response", cat)
	}
	if len(o.Ways) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyResult, "no %s network inside the region", cat)
	}

	return netgraph.Simplify(netgraph.FromOSM(&o, cat)), nil
}

// classifyRemark maps an Overpass remark to the error taxonomy. A
// remark replaces results when the server rejects or aborts the query.
func classifyRemark(remark string, cat netgraph.Category) error {
	if strings.Contains(strings.ToLower(remark), "poly") {
		return errors.New(errors.ErrCodeMalformedRegion, "%s network query rejected: %s", cat, remark)
	}
	return errors.New(errors.ErrCodeSourceUnavailable, "%s network query aborted: %s", cat, remark)
}
