package cli

import (
	"github.com/spf13/cobra"

	"github.com/mapforge/mapforge/internal/server"
	"github.com/mapforge/mapforge/pkg/gis/nominatim"
	"github.com/mapforge/mapforge/pkg/gis/overpass"
	"github.com/mapforge/mapforge/pkg/pipeline"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the map generation HTTP API",
		Long: `Start an HTTP server exposing the map generation pipeline.

POST /api/v1/maps accepts a JSON request and returns a rendered PNG
or a JSON summary. GET /healthz reports liveness and GET /metrics
exposes prometheus metrics.`,
		Example: `  mapforge serve
  mapforge serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			backend, err := newCacheBackend(ctx, cfg.Cache)
			if err != nil {
				return err
			}
			defer backend.Close()

			server.RegisterHooks()

			keyer := newKeyer(cfg.Cache)
			geocoder := nominatim.NewClient(backend, cfg.GeocoderTimeout()).
				WithBaseURL(cfg.Geocoder.BaseURL).WithKeyer(keyer)
			fetcher := overpass.NewClient(backend, cfg.OverpassTimeout()).
				WithBaseURL(cfg.Overpass.BaseURL).WithKeyer(keyer)
			runner := pipeline.NewRunner(geocoder, fetcher, logger)

			srv := server.New(cfg.Server.Addr, runner, logger)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
