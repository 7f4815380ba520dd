package observability

import (
	"context"
	"testing"
	"time"
)

type testPipelineHooks struct {
	NoopPipelineHooks
	fetches int
}

func (h *testPipelineHooks) OnFetchStart(context.Context, string) { h.fetches++ }

type testCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string) { h.hits++ }

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnGeocodeStart(ctx, "College Station, Texas")
	p.OnGeocodeComplete(ctx, "College Station, Texas", time.Second, nil)
	p.OnRegionComplete(ctx, 3857, 15000, nil)
	p.OnFetchStart(ctx, "drive")
	p.OnFetchComplete(ctx, "drive", 1200, time.Second, nil)
	p.OnMergeComplete(ctx, []string{"drive", "walk"}, 2000, 2600, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "geocode")
	c.OnCacheMiss(ctx, "network")
	c.OnCacheSet(ctx, "network", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "overpass-api.de")
	h.OnResponse(ctx, "POST", "overpass-api.de", 200, time.Second)
	h.OnError(ctx, "POST", "overpass-api.de", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should replace the registered hooks")
	}
	Pipeline().OnFetchStart(context.Background(), "drive")
	if customPipeline.fetches != 1 {
		t.Errorf("fetches = %d, want 1", customPipeline.fetches)
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should replace the registered hooks")
	}

	// nil registrations are ignored
	SetPipelineHooks(nil)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks(nil) should keep existing hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore noop hooks")
	}
}
