package cli

import (
	"context"

	"github.com/mapforge/mapforge/pkg/cache"
	"github.com/mapforge/mapforge/pkg/config"
)

// loadConfig reads the config file, falling back to the standard location
// when no explicit path was given.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// newKeyer builds the cache key generator. Redis deployments sharing one
// instance get their keys scoped by the configured namespace.
func newKeyer(cfg config.CacheConfig) cache.Keyer {
	if cfg.Backend == "redis" && cfg.Redis.Namespace != "" {
		return cache.NewScopedKeyer(nil, cfg.Redis.Namespace+":")
	}
	return cache.NewDefaultKeyer()
}

// newCacheBackend builds the cache backend selected by the config.
func newCacheBackend(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		return cache.NewFileCache(cfg.Dir)
	}
}
