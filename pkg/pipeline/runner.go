package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/geo"
	"github.com/mapforge/mapforge/pkg/netgraph"
	"github.com/mapforge/mapforge/pkg/observability"
)

// Geocoder resolves a free-form place name to a coordinate.
// Implementations must be safe for concurrent use.
type Geocoder interface {
	Resolve(ctx context.Context, place string, refresh bool) (*geo.GeocodeResult, error)
}

// Fetcher retrieves the routable network of one category inside a region.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, region *geo.Region, cat netgraph.Category, refresh bool) (*netgraph.Graph, error)
}

// Runner encapsulates pipeline execution. It is stateless except for its
// collaborators, so multiple goroutines can share one Runner with
// different options.
type Runner struct {
	Geocoder Geocoder
	Fetcher  Fetcher
	Logger   *log.Logger
}

// NewRunner creates a runner with the given geocoder and fetcher.
// If logger is nil, the default logger is used.
func NewRunner(g Geocoder, f Fetcher, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Geocoder: g, Fetcher: f, Logger: logger}
}

// Run executes the complete geocode → region → fetch → merge pipeline.
//
// Geocode and region failures abort the run with GEOCODE_FAILED or
// REGION_FAILED. A category whose fetch fails is logged, recorded in
// Result.Failed, and excluded from the merge; the run fails with
// NO_NETWORKS_FETCHED only when no category succeeded.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	result := &Result{Failed: make(map[netgraph.Category]string)}

	// Stage 1: Geocode
	geocodeStart := time.Now()
	observability.Pipeline().OnGeocodeStart(ctx, opts.Place)
	geocode, err := r.Geocoder.Resolve(ctx, opts.Place, opts.Refresh)
	observability.Pipeline().OnGeocodeComplete(ctx, opts.Place, time.Since(geocodeStart), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeocodeFailed, err, "resolving %q", opts.Place)
	}
	result.Geocode = geocode
	result.Stats.GeocodeTime = time.Since(geocodeStart)

	logger.Info("resolved place",
		"place", opts.Place,
		"coordinate", geocode.Coordinate,
		"duration", result.Stats.GeocodeTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Region
	regionStart := time.Now()
	region, err := r.buildRegion(geocode.Coordinate, opts)
	observability.Pipeline().OnRegionComplete(ctx, opts.EPSG, opts.RadiusMeters, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRegionFailed, err, "buffering %s by %.0f m", geocode.Coordinate, opts.RadiusMeters)
	}
	result.Region = region
	result.Stats.RegionTime = time.Since(regionStart)

	logger.Debug("built query region",
		"epsg", opts.EPSG,
		"radius_m", opts.RadiusMeters,
		"area_m2", region.ProjectedArea())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Fetch, one network per category
	fetchStart := time.Now()
	graphs := r.fetchAll(ctx, region, opts, result.Failed)
	result.Stats.FetchTime = time.Since(fetchStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(graphs) == 0 {
		return nil, errors.New(errors.ErrCodeNoNetworksFetched,
			"no networks could be fetched for %q", opts.Place)
	}

	// Stage 4: Merge
	mergeStart := time.Now()
	result.Combined = netgraph.Merge(graphs)
	result.Stats.MergeTime = time.Since(mergeStart)
	result.Stats.NodeCount = result.Combined.NodeCount()
	result.Stats.EdgeCount = result.Combined.EdgeCount()
	observability.Pipeline().OnMergeComplete(ctx, result.Combined.Provenance,
		result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.MergeTime)

	logger.Info("merged networks",
		"categories", result.Combined.Provenance,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount)

	return result, nil
}

func (r *Runner) buildRegion(center geo.Coordinate, opts Options) (*geo.Region, error) {
	crs, err := geo.LookupCRS(opts.EPSG)
	if err != nil {
		return nil, err
	}
	return geo.BuildRegion(center, opts.RadiusMeters, crs)
}

// fetchAll retrieves one graph per requested category, recording failures
// in failed instead of propagating them. Returned graphs preserve request
// order regardless of fetch mode.
func (r *Runner) fetchAll(ctx context.Context, region *geo.Region, opts Options, failed map[netgraph.Category]string) []*netgraph.Graph {
	byCategory := make([]*netgraph.Graph, len(opts.Categories))
	var mu sync.Mutex

	fetch := func(i int, cat netgraph.Category) {
		start := time.Now()
		observability.Pipeline().OnFetchStart(ctx, string(cat))
		g, err := r.Fetcher.Fetch(ctx, region, cat, opts.Refresh)
		nodes := 0
		if g != nil {
			nodes = g.NodeCount()
		}
		observability.Pipeline().OnFetchComplete(ctx, string(cat), nodes, time.Since(start), err)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			opts.Logger.Warn("network excluded",
				"category", cat,
				"error", errors.UserMessage(err))
			failed[cat] = errors.UserMessage(err)
			return
		}
		byCategory[i] = g
		opts.Logger.Info("fetched network",
			"category", cat,
			"nodes", g.NodeCount(),
			"edges", g.EdgeCount(),
			"duration", time.Since(start))
	}

	if opts.Concurrent {
		var wg sync.WaitGroup
		for i, cat := range opts.Categories {
			wg.Add(1)
			go func(i int, cat netgraph.Category) {
				defer wg.Done()
				fetch(i, cat)
			}(i, cat)
		}
		wg.Wait()
	} else {
		for i, cat := range opts.Categories {
			if ctx.Err() != nil {
				break
			}
			fetch(i, cat)
		}
	}

	graphs := make([]*netgraph.Graph, 0, len(byCategory))
	for _, g := range byCategory {
		if g != nil {
			graphs = append(graphs, g)
		}
	}
	return graphs
}

// FailedCategories returns the excluded categories in a stable order,
// for reporting.
func (r *Result) FailedCategories() []netgraph.Category {
	cats := make([]netgraph.Category, 0, len(r.Failed))
	for cat := range r.Failed {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
