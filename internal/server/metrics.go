package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mapforge/mapforge/pkg/observability"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapforge",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 180},
	}, []string{"method", "path"})

	pipelineStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapforge",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages",
		Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 180},
	}, []string{"stage"})

	pipelineStageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "pipeline",
		Name:      "stage_errors_total",
		Help:      "Total pipeline stage failures",
	}, []string{"stage"})

	networksFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "pipeline",
		Name:      "networks_fetched_total",
		Help:      "Total per-category network fetches",
	}, []string{"category", "outcome"})

	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "cache",
		Name:      "operations_total",
		Help:      "Total cache operations by key type",
	}, []string{"key_type", "operation"})

	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapforge",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Total requests to external geo services",
	}, []string{"host", "status"})
)

// promPipelineHooks exports pipeline stage events as prometheus metrics.
type promPipelineHooks struct {
	observability.NoopPipelineHooks
}

func (promPipelineHooks) OnGeocodeComplete(_ context.Context, _ string, d time.Duration, err error) {
	pipelineStageDuration.WithLabelValues("geocode").Observe(d.Seconds())
	if err != nil {
		pipelineStageErrors.WithLabelValues("geocode").Inc()
	}
}

func (promPipelineHooks) OnRegionComplete(_ context.Context, _ int, _ float64, err error) {
	if err != nil {
		pipelineStageErrors.WithLabelValues("region").Inc()
	}
}

func (promPipelineHooks) OnFetchComplete(_ context.Context, category string, _ int, d time.Duration, err error) {
	pipelineStageDuration.WithLabelValues("fetch").Observe(d.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
		pipelineStageErrors.WithLabelValues("fetch").Inc()
	}
	networksFetched.WithLabelValues(category, outcome).Inc()
}

func (promPipelineHooks) OnMergeComplete(_ context.Context, _ []string, _, _ int, d time.Duration) {
	pipelineStageDuration.WithLabelValues("merge").Observe(d.Seconds())
}

// promCacheHooks exports cache activity as prometheus metrics.
type promCacheHooks struct{}

func (promCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (promCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (promCacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	cacheOps.WithLabelValues(keyType, "set").Inc()
}

// promHTTPHooks exports upstream request activity as prometheus metrics.
type promHTTPHooks struct {
	observability.NoopHTTPHooks
}

func (promHTTPHooks) OnResponse(_ context.Context, _, host string, statusCode int, _ time.Duration) {
	upstreamRequests.WithLabelValues(host, strconv.Itoa(statusCode)).Inc()
}

func (promHTTPHooks) OnError(_ context.Context, _, host string, _ error) {
	upstreamRequests.WithLabelValues(host, "error").Inc()
}

// RegisterHooks installs the prometheus-backed observability hooks.
// Call once at startup before serving.
func RegisterHooks() {
	observability.SetPipelineHooks(promPipelineHooks{})
	observability.SetCacheHooks(promCacheHooks{})
	observability.SetHTTPHooks(promHTTPHooks{})
}
