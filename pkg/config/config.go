// Package config loads MapForge configuration from a TOML file.
//
// Configuration is entirely optional: every field has a default, and a
// missing file is not an error. The CLI looks for the file at
// $XDG_CONFIG_HOME/mapforge/config.toml (falling back to
// ~/.config/mapforge/config.toml).
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mapforge/mapforge/pkg/errors"
)

// Config is the root of the TOML configuration file.
type Config struct {
	Geocoder GeocoderConfig `toml:"geocoder"`
	Overpass OverpassConfig `toml:"overpass"`
	Cache    CacheConfig    `toml:"cache"`
	Render   RenderConfig   `toml:"render"`
	Server   ServerConfig   `toml:"server"`
}

// GeocoderConfig configures the Nominatim client.
type GeocoderConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OverpassConfig configures the Overpass client.
type OverpassConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is "file", "redis" or "none".
	Backend string `toml:"backend"`

	// Dir is the file cache directory. Empty selects the default under
	// the user cache directory.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	// Namespace prefixes all cache keys, isolating deployments that
	// share one redis instance. Empty means no prefix.
	Namespace string `toml:"namespace"`
}

// RenderConfig configures PNG output.
type RenderConfig struct {
	Size      int     `toml:"size"`
	EdgeWidth float64 `toml:"edge_width"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Geocoder: GeocoderConfig{TimeoutSeconds: 10},
		Overpass: OverpassConfig{TimeoutSeconds: 180},
		Cache:    CacheConfig{Backend: "file", Redis: RedisConfig{Addr: "localhost:6379"}},
		Render:   RenderConfig{Size: 1024, EdgeWidth: 0.5},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// Load reads the configuration file at path, layering it over the
// defaults. A missing file returns the defaults; a malformed file is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing config %s", path)
	}
	return cfg, cfg.validate()
}

// DefaultPath returns the standard location of the configuration file.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mapforge", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mapforge", "config.toml")
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Geocoder.TimeoutSeconds < 0 || c.Overpass.TimeoutSeconds < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeouts cannot be negative")
	}
	if c.Render.Size < 0 || c.Render.EdgeWidth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render settings cannot be negative")
	}
	return nil
}

// GeocoderTimeout returns the geocoder timeout as a duration.
func (c Config) GeocoderTimeout() time.Duration {
	return time.Duration(c.Geocoder.TimeoutSeconds) * time.Second
}

// OverpassTimeout returns the Overpass timeout as a duration.
func (c Config) OverpassTimeout() time.Duration {
	return time.Duration(c.Overpass.TimeoutSeconds) * time.Second
}
