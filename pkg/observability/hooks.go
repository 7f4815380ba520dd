// Package observability provides hooks for metrics, tracing, and logging.
//
// It enables optional instrumentation without adding hard dependencies on
// specific observability backends. Consumers register hooks at startup to
// receive events about pipeline stages, cache operations, and outgoing
// HTTP requests; libraries emit events through the global registry:
//
//	observability.Pipeline().OnFetchStart(ctx, "drive")
//	// ... fetch the network ...
//	observability.Pipeline().OnFetchComplete(ctx, "drive", nodes, duration, err)
//
// Hooks are registered by main, never by libraries, which keeps the core
// packages free of backend imports and avoids import cycles.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the map generation pipeline.
type PipelineHooks interface {
	// Geocode events
	OnGeocodeStart(ctx context.Context, place string)
	OnGeocodeComplete(ctx context.Context, place string, duration time.Duration, err error)

	// Region events
	OnRegionComplete(ctx context.Context, epsg int, radiusMeters float64, err error)

	// Network fetch events, one pair per category
	OnFetchStart(ctx context.Context, category string)
	OnFetchComplete(ctx context.Context, category string, nodeCount int, duration time.Duration, err error)

	// Merge events
	OnMergeComplete(ctx context.Context, categories []string, nodeCount, edgeCount int, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host string, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnGeocodeStart(context.Context, string)                              {}
func (NoopPipelineHooks) OnGeocodeComplete(context.Context, string, time.Duration, error)     {}
func (NoopPipelineHooks) OnRegionComplete(context.Context, int, float64, error)               {}
func (NoopPipelineHooks) OnFetchStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnMergeComplete(context.Context, []string, int, int, time.Duration)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
