package cli

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mapforge/mapforge/pkg/gis/nominatim"
	"github.com/mapforge/mapforge/pkg/gis/overpass"
	"github.com/mapforge/mapforge/pkg/netgraph"
	"github.com/mapforge/mapforge/pkg/pipeline"
	"github.com/mapforge/mapforge/pkg/render"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	radiusKM   float64 // buffer radius around the place in kilometers
	epsg       int     // EPSG code of the projection used for buffering
	drive      bool    // include the drivable network
	bike       bool    // include the bikeable network
	walk       bool    // include the walkable network
	output     string  // output file path
	size       int     // canvas edge length in pixels
	refresh    bool    // bypass the cache
	concurrent bool    // fetch categories in parallel
	noCache    bool    // disable caching entirely
}

// categories returns the requested categories in display order, or nil
// when no category flag was set so the pipeline default applies.
func (o *generateOpts) categories() []netgraph.Category {
	var cats []netgraph.Category
	if o.drive {
		cats = append(cats, netgraph.CategoryDrive)
	}
	if o.bike {
		cats = append(cats, netgraph.CategoryBike)
	}
	if o.walk {
		cats = append(cats, netgraph.CategoryWalk)
	}
	return cats
}

// newGenerateCmd creates the generate command.
//
// Default settings:
//   - radius: 15 km
//   - epsg: 3857 (Web Mercator)
//   - categories: drive and bike
//   - output: derived from the place name (e.g. college-station-texas.png)
func newGenerateCmd(configPath *string) *cobra.Command {
	opts := generateOpts{
		radiusKM: pipeline.DefaultRadiusMeters / 1000,
		epsg:     pipeline.DefaultEPSG,
	}

	cmd := &cobra.Command{
		Use:   "generate [place]",
		Short: "Generate a street network map for a place",
		Long: `Generate resolves a place name to coordinates, fetches the routable
street networks inside a circular region around it, and renders them as
a white-on-black PNG map.

A category that cannot be fetched is reported and excluded; the map is
still generated from the remaining categories.`,
		Example: `  mapforge generate "College Station, Texas"
  mapforge generate Tokyo --radius-km 5 --drive --walk
  mapforge generate "Berlin, Germany" --epsg 25833 -o berlin.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), strings.Join(args, " "), *configPath, &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.radiusKM, "radius-km", opts.radiusKM, "buffer radius in kilometers")
	cmd.Flags().IntVar(&opts.epsg, "epsg", opts.epsg, "EPSG code of the buffering projection")
	cmd.Flags().BoolVar(&opts.drive, "drive", false, "include the drivable network")
	cmd.Flags().BoolVar(&opts.bike, "bike", false, "include the bikeable network")
	cmd.Flags().BoolVar(&opts.walk, "walk", false, "include the walkable network")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default derived from place)")
	cmd.Flags().IntVar(&opts.size, "size", 0, "canvas size in pixels (default from config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache")
	cmd.Flags().BoolVar(&opts.concurrent, "concurrent", false, "fetch categories in parallel")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching entirely")

	return cmd
}

func runGenerate(ctx context.Context, place, configPath string, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	cacheCfg := cfg.Cache
	if opts.noCache {
		cacheCfg.Backend = "none"
	}
	backend, err := newCacheBackend(ctx, cacheCfg)
	if err != nil {
		return fmt.Errorf("cache backend: %w", err)
	}
	defer backend.Close()

	keyer := newKeyer(cacheCfg)
	runner := pipeline.NewRunner(
		nominatim.NewClient(backend, cfg.GeocoderTimeout()).WithBaseURL(cfg.Geocoder.BaseURL).WithKeyer(keyer),
		overpass.NewClient(backend, cfg.OverpassTimeout()).WithBaseURL(cfg.Overpass.BaseURL).WithKeyer(keyer),
		logger,
	)

	track := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating map for %s", place))
	spinner.Start()

	result, err := runner.Run(ctx, pipeline.Options{
		Place:        place,
		RadiusMeters: opts.radiusKM * 1000,
		EPSG:         opts.epsg,
		Categories:   opts.categories(),
		Refresh:      opts.refresh,
		Concurrent:   opts.concurrent,
		Logger:       logger,
	})
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return ctx.Err()
		}
		printError("Could not generate map for %s", place)
		return err
	}
	track.done(fmt.Sprintf("Fetched %d networks", len(result.Combined.Provenance)))

	for _, cat := range result.FailedCategories() {
		printWarning("%s network excluded: %s", cat.Label(), result.Failed[cat])
	}

	output := opts.output
	if output == "" {
		output = slugify(place) + ".png"
	}

	size := opts.size
	if size == 0 {
		size = cfg.Render.Size
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := render.WritePNG(f, result.Combined, place, render.Options{
		Size:      size,
		EdgeWidth: cfg.Render.EdgeWidth,
	}); err != nil {
		return err
	}

	printSuccess("Generated map for %s", place)
	printDetail("Resolved: %s", result.Geocode.Address)
	printFile(output)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Combined.Provenance)
	return nil
}

var slugRE = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a filesystem-friendly name from a place name.
func slugify(place string) string {
	s := slugRE.ReplaceAllString(strings.ToLower(place), "-")
	return strings.Trim(s, "-")
}
