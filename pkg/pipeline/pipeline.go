// Package pipeline provides the core map generation pipeline for MapForge.
//
// This package implements the complete geocode → region → fetch → merge
// pipeline used by both the CLI and the HTTP API. Centralizing it keeps
// behavior consistent across entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Geocode: Resolve a place name to a coordinate
//  2. Region: Buffer the coordinate into a circular query region
//  3. Fetch: Retrieve the routable network for each requested category
//  4. Merge: Union the per-category networks into one combined graph
//
// Geocode and region failures abort the run. Fetch failures do not: a
// category that cannot be fetched is recorded and excluded, and the run
// fails only when every category failed.
//
// # Usage
//
//	runner := pipeline.NewRunner(geocoder, fetcher, logger)
//	opts := pipeline.Options{
//	    Place:      "College Station, Texas",
//	    Categories: []netgraph.Category{netgraph.CategoryDrive},
//	}
//	result, err := runner.Run(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	combined := result.Combined
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/geo"
	"github.com/mapforge/mapforge/pkg/netgraph"
)

const (
	// DefaultRadiusMeters is the buffer radius applied when none is given.
	DefaultRadiusMeters = 15000.0

	// DefaultEPSG is the projection used for buffering when none is given.
	// Web Mercator is not distance-true at high latitudes, but it is
	// defined almost everywhere, which makes it a safe default.
	DefaultEPSG = 3857
)

// DefaultCategories are the networks fetched when none are requested.
var DefaultCategories = []netgraph.Category{netgraph.CategoryDrive, netgraph.CategoryBike}

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Place        string              `json:"place"`
	RadiusMeters float64             `json:"radius_meters,omitempty"`
	EPSG         int                 `json:"epsg,omitempty"`
	Categories   []netgraph.Category `json:"categories,omitempty"`
	Refresh      bool                `json:"refresh,omitempty"`

	// Concurrent fans the per-category fetches out to goroutines instead
	// of running them sequentially. The merged result is identical either
	// way; sequential is the default because it is gentler on the public
	// data services.
	Concurrent bool `json:"concurrent,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if err := errors.ValidatePlaceName(o.Place); err != nil {
		return err
	}

	if o.RadiusMeters == 0 {
		o.RadiusMeters = DefaultRadiusMeters
	}
	if err := errors.ValidateRadius(o.RadiusMeters); err != nil {
		return err
	}

	if o.EPSG == 0 {
		o.EPSG = DefaultEPSG
	}

	if len(o.Categories) == 0 {
		o.Categories = append([]netgraph.Category(nil), DefaultCategories...)
	}
	seen := make(map[netgraph.Category]bool, len(o.Categories))
	deduped := o.Categories[:0]
	for _, cat := range o.Categories {
		if _, err := netgraph.ParseCategory(string(cat)); err != nil {
			return err
		}
		if !seen[cat] {
			seen[cat] = true
			deduped = append(deduped, cat)
		}
	}
	o.Categories = deduped

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Combined is the merged network graph with provenance labels in
	// request order. Categories that failed to fetch are absent.
	Combined *netgraph.Combined

	// Geocode is the resolved place, kept for labeling output.
	Geocode *geo.GeocodeResult

	// Region is the buffered query region.
	Region *geo.Region

	// Failed maps each excluded category to the failure that excluded it.
	// Empty on a fully successful run.
	Failed map[netgraph.Category]string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	GeocodeTime time.Duration
	RegionTime  time.Duration
	FetchTime   time.Duration
	MergeTime   time.Duration
}
