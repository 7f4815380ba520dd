package overpass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mapforge/mapforge/pkg/cache"
	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/geo"
	"github.com/mapforge/mapforge/pkg/gis"
	"github.com/mapforge/mapforge/pkg/httputil"
	"github.com/mapforge/mapforge/pkg/netgraph"
)

const networkJSON = `{
  "version": 0.6,
  "generator": "Overpass API",
  "elements": [
    {"type": "node", "id": 1, "lat": 30.6270, "lon": -96.3350},
    {"type": "node", "id": 2, "lat": 30.6275, "lon": -96.3345},
    {"type": "node", "id": 3, "lat": 30.6280, "lon": -96.3340},
    {"type": "way", "id": 10, "nodes": [1, 2, 3], "tags": {"highway": "residential"}}
  ]
}`

func testRegion(t *testing.T) *geo.Region {
	t.Helper()
	crs, err := geo.LookupCRS(3857)
	if err != nil {
		t.Fatal(err)
	}
	region, err := geo.BuildRegion(geo.Coordinate{Lat: 30.6280, Lon: -96.3344}, 1000, crs)
	if err != nil {
		t.Fatal(err)
	}
	return region
}

func testClient(serverURL string, backend cache.Cache) *Client {
	return &Client{
		Client:  gis.NewClient(backend, httputil.FixedPolicy(3, time.Millisecond), 0, nil),
		baseURL: serverURL,
		keys:    cache.NewDefaultKeyer(),
	}
}

func TestBuildQuery(t *testing.T) {
	region := testRegion(t)

	for _, cat := range netgraph.AllCategories {
		q := buildQuery(region, cat)
		if !strings.Contains(q, "[out:json]") {
			t.Errorf("%s query missing output directive:\n%s", cat, q)
		}
		if !strings.Contains(q, `way["highway"]`) {
			t.Errorf("%s query missing highway selector", cat)
		}
		if !strings.Contains(q, "(poly:") {
			t.Errorf("%s query missing poly clipping", cat)
		}
		if !strings.Contains(q, "out body;") || !strings.Contains(q, ">;") {
			t.Errorf("%s query missing node recursion", cat)
		}
	}

	drive := buildQuery(region, netgraph.CategoryDrive)
	if !strings.Contains(drive, `"motor_vehicle"!~"no"`) {
		t.Error("drive query should exclude motor_vehicle=no ways")
	}
	walk := buildQuery(region, netgraph.CategoryWalk)
	if !strings.Contains(walk, `"foot"!~"no"`) {
		t.Error("walk query should exclude foot=no ways")
	}
}

func TestPolyClause(t *testing.T) {
	region := testRegion(t)
	poly := polyClause(region)

	// 65 closed-ring vertices, each "lat lon".
	fields := strings.Fields(poly)
	if len(fields) != 65*2 {
		t.Errorf("poly clause has %d fields, want %d", len(fields), 65*2)
	}
	// Latitude comes first in Overpass poly filters.
	if !strings.HasPrefix(fields[0], "30.") {
		t.Errorf("first field %q should be a latitude near 30", fields[0])
	}
}

func TestClient_Fetch(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		query = r.PostForm.Get("data")
		w.Write([]byte(networkJSON))
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NullCache{})
	g, err := c.Fetch(context.Background(), testRegion(t), netgraph.CategoryDrive, false)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if !strings.Contains(query, "(poly:") {
		t.Errorf("posted query missing poly filter:\n%s", query)
	}
	// The degree-2 midpoint collapses during simplification.
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if g.Category != netgraph.CategoryDrive {
		t.Errorf("Category = %q, want drive", g.Category)
	}
}

func TestClient_Fetch_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":0.6,"generator":"Overpass API","elements":[]}`))
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NullCache{})
	_, err := c.Fetch(context.Background(), testRegion(t), netgraph.CategoryBike, false)
	if !errors.Is(err, errors.ErrCodeEmptyResult) {
		t.Errorf("error = %v, want EMPTY_RESULT", err)
	}
	if err != nil && !strings.Contains(err.Error(), "bike") {
		t.Errorf("error should name the category: %v", err)
	}
}

func TestClient_Fetch_RemarkClassification(t *testing.T) {
	tests := []struct {
		name   string
		remark string
		want   errors.Code
	}{
		{"bad polygon", "runtime error: poly argument is malformed", errors.ErrCodeMalformedRegion},
		{"server abort", "runtime error: Query timed out in \"query\"", errors.ErrCodeSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				remark, _ := json.Marshal(tt.remark)
				w.Write([]byte(`{"version":0.6,"elements":[],"remark":` + string(remark) + `}`))
			}))
			defer server.Close()

			c := testClient(server.URL, cache.NullCache{})
			_, err := c.Fetch(context.Background(), testRegion(t), netgraph.CategoryDrive, false)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestClient_Fetch_ServerErrorRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer server.Close()

	c := testClient(server.URL, cache.NullCache{})
	_, err := c.Fetch(context.Background(), testRegion(t), netgraph.CategoryWalk, false)
	if !errors.Is(err, errors.ErrCodeSourceUnavailable) {
		t.Errorf("error = %v, want SOURCE_UNAVAILABLE", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server called %d times, want 3", n)
	}
	if err != nil && !strings.Contains(err.Error(), "walk") {
		t.Errorf("error should name the category: %v", err)
	}
}

func TestClient_Fetch_UsesCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(networkJSON))
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := testClient(server.URL, fc)
	region := testRegion(t)

	for i := 0; i < 2; i++ {
		if _, err := c.Fetch(context.Background(), region, netgraph.CategoryDrive, false); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}

	// Different category misses the cache even for the same region.
	if _, err := c.Fetch(context.Background(), region, netgraph.CategoryBike, false); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server called %d times, want 2", n)
	}

	if _, err := c.Fetch(context.Background(), region, netgraph.CategoryDrive, true); err != nil {
		t.Fatalf("Fetch() with refresh error = %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server called %d times, want 3 (refresh bypasses cache)", n)
	}
}

func TestClient_Fetch_DegenerateRegion(t *testing.T) {
	c := testClient("http://invalid.test", cache.NullCache{})
	_, err := c.Fetch(context.Background(), nil, netgraph.CategoryDrive, false)
	if !errors.Is(err, errors.ErrCodeMalformedRegion) {
		t.Errorf("error = %v, want MALFORMED_REGION", err)
	}
}
