package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/geo"
	"github.com/mapforge/mapforge/pkg/netgraph"
	"github.com/mapforge/mapforge/pkg/pipeline"
)

type fakeGeocoder struct {
	err error
}

func (g fakeGeocoder) Resolve(ctx context.Context, place string, refresh bool) (*geo.GeocodeResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &geo.GeocodeResult{
		Coordinate: geo.Coordinate{Lat: 30.6280, Lon: -96.3344},
		Address:    "College Station, Brazos County, Texas, United States",
	}, nil
}

type fakeFetcher struct {
	errs map[netgraph.Category]error
}

func (f fakeFetcher) Fetch(ctx context.Context, region *geo.Region, cat netgraph.Category, refresh bool) (*netgraph.Graph, error) {
	if err := f.errs[cat]; err != nil {
		return nil, err
	}
	g := netgraph.New(cat)
	g.AddNode(netgraph.Node{ID: 1, Point: orb.Point{-96.3344, 30.6280}})
	g.AddNode(netgraph.Node{ID: 2, Point: orb.Point{-96.33, 30.63}})
	g.AddEdge(netgraph.Edge{From: 1, To: 2, Way: osm.WayID(10)})
	return g, nil
}

func testServer(t *testing.T, g pipeline.Geocoder, f pipeline.Fetcher) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	srv := New(":0", pipeline.NewRunner(g, f, logger), logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postMaps(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/maps", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/v1/maps: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	ts := testServer(t, fakeGeocoder{}, fakeFetcher{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if id := resp.Header.Get("X-Request-ID"); id == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := testServer(t, fakeGeocoder{}, fakeFetcher{})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("go_goroutines")) {
		t.Error("metrics output missing standard collectors")
	}
}

func TestCreateMap_JSON(t *testing.T) {
	ts := testServer(t, fakeGeocoder{}, fakeFetcher{})

	resp := postMaps(t, ts, `{"place": "College Station, Texas", "categories": ["drive"], "format": "json"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got mapResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Address == "" {
		t.Error("Address is empty")
	}
	if got.NodeCount != 2 || got.EdgeCount != 1 {
		t.Errorf("counts = (%d, %d), want (2, 1)", got.NodeCount, got.EdgeCount)
	}
	if len(got.Provenance) != 1 || got.Provenance[0] != "Drive" {
		t.Errorf("Provenance = %v, want [Drive]", got.Provenance)
	}
	if len(got.Failed) != 0 {
		t.Errorf("Failed = %v, want empty", got.Failed)
	}
}

func TestCreateMap_PNG(t *testing.T) {
	ts := testServer(t, fakeGeocoder{}, fakeFetcher{})

	resp := postMaps(t, ts, `{"place": "College Station, Texas", "categories": ["drive"], "size": 256}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Content-Type = %q, want image/png", ct)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decoding png: %v", err)
	}
	if got := img.Bounds().Dx(); got != 256 {
		t.Errorf("image width = %d, want 256", got)
	}
}

func TestCreateMap_PartialFailure(t *testing.T) {
	fetcher := fakeFetcher{errs: map[netgraph.Category]error{
		netgraph.CategoryBike: errors.New(errors.ErrCodeEmptyResult, "no bike network inside the region"),
	}}
	ts := testServer(t, fakeGeocoder{}, fetcher)

	resp := postMaps(t, ts, `{"place": "x", "categories": ["drive", "bike"], "format": "json"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got mapResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got.Provenance) != 1 || got.Provenance[0] != "Drive" {
		t.Errorf("Provenance = %v, want [Drive]", got.Provenance)
	}
	if _, ok := got.Failed["bike"]; !ok {
		t.Errorf("Failed = %v, want bike entry", got.Failed)
	}
}

// edgelessFetcher returns graphs with nodes but no edges, so the
// pipeline succeeds while rendering has nothing to draw.
type edgelessFetcher struct{}

func (edgelessFetcher) Fetch(ctx context.Context, region *geo.Region, cat netgraph.Category, refresh bool) (*netgraph.Graph, error) {
	g := netgraph.New(cat)
	g.AddNode(netgraph.Node{ID: 1, Point: orb.Point{-96.3344, 30.6280}})
	return g, nil
}

func TestCreateMap_RenderFailureIsJSONError(t *testing.T) {
	ts := testServer(t, fakeGeocoder{}, edgelessFetcher{})

	resp := postMaps(t, ts, `{"place": "x", "categories": ["drive"]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json (no partial image)", ct)
	}

	var got errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if got.Code != "INVALID_INPUT" {
		t.Errorf("code = %q, want INVALID_INPUT", got.Code)
	}
}

func TestCreateMap_Errors(t *testing.T) {
	tests := []struct {
		name       string
		geocoder   fakeGeocoder
		fetcher    fakeFetcher
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed body",
			body:       `{"place": `,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FORMAT",
		},
		{
			name:       "unsupported format",
			body:       `{"place": "x", "format": "svg"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FORMAT",
		},
		{
			name:       "empty place",
			body:       `{"place": ""}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PLACE",
		},
		{
			name:       "bad category",
			body:       `{"place": "x", "categories": ["submarine"]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_CATEGORY",
		},
		{
			name:       "place not found",
			geocoder:   fakeGeocoder{err: errors.New(errors.ErrCodeNotFound, "no results")},
			body:       `{"place": "nowhere"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "GEOCODE_FAILED",
		},
		{
			name: "all categories fail",
			fetcher: fakeFetcher{errs: map[netgraph.Category]error{
				netgraph.CategoryDrive: errors.New(errors.ErrCodeSourceUnavailable, "overpass down"),
			}},
			body:       `{"place": "x", "categories": ["drive"]}`,
			wantStatus: http.StatusBadGateway,
			wantCode:   "NO_NETWORKS_FETCHED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testServer(t, tt.geocoder, tt.fetcher)

			resp := postMaps(t, ts, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			var got errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestRequestID_Echoed(t *testing.T) {
	ts := testServer(t, fakeGeocoder{}, fakeFetcher{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}
