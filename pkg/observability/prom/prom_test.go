package prom

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/unixblacksteel/mindmap/pkg/observability"
)

func TestPipelineMetrics(t *testing.T) {
	m := New("test")
	ctx := context.Background()

	m.OnGenerateStart(ctx, "mindmap")
	if got := testutil.ToFloat64(m.inflight.WithLabelValues("mindmap")); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	m.OnGenerateComplete(ctx, "mindmap", time.Second, nil)
	m.OnGenerateStart(ctx, "mindmap")
	m.OnGenerateComplete(ctx, "mindmap", time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(m.inflight.WithLabelValues("mindmap")); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.generations.WithLabelValues("mindmap", "ok")); got != 1 {
		t.Errorf("ok generations = %v", got)
	}
	if got := testutil.ToFloat64(m.generations.WithLabelValues("mindmap", "error")); got != 1 {
		t.Errorf("failed generations = %v", got)
	}

	m.OnLayoutComplete(ctx, 12, time.Millisecond, nil)
	m.OnExportComplete(ctx, "png", 2048, 50*time.Millisecond, nil)
	if got := testutil.ToFloat64(m.layouts.WithLabelValues("ok")); got != 1 {
		t.Errorf("layouts = %v", got)
	}
	if got := testutil.ToFloat64(m.exports.WithLabelValues("png", "ok")); got != 1 {
		t.Errorf("exports = %v", got)
	}
}

func TestCacheAndHTTPMetrics(t *testing.T) {
	m := New("test")
	ctx := context.Background()

	m.OnCacheHit(ctx, "mindmap")
	m.OnCacheMiss(ctx, "mindmap")
	m.OnCacheMiss(ctx, "artifact")
	m.OnCacheSet(ctx, "artifact", 100)
	if got := testutil.ToFloat64(m.cacheEvents.WithLabelValues("artifact", "miss")); got != 1 {
		t.Errorf("artifact misses = %v", got)
	}
	if got := testutil.ToFloat64(m.cacheSetBytes.WithLabelValues("artifact")); got != 100 {
		t.Errorf("bytes written = %v", got)
	}

	m.OnResponse(ctx, "POST", "api.example", "/v1", 429, time.Second)
	m.OnError(ctx, "POST", "api.example", "/v1", errors.New("reset"))
	if got := testutil.ToFloat64(m.upstreamRequests.WithLabelValues("POST", "api.example", "429")); got != 1 {
		t.Errorf("upstream 429s = %v", got)
	}
	if got := testutil.ToFloat64(m.upstreamErrors.WithLabelValues("POST", "api.example")); got != 1 {
		t.Errorf("upstream errors = %v", got)
	}
}

func TestInstallAndHandler(t *testing.T) {
	m := New("mindmap")
	m.Install()
	t.Cleanup(observability.Reset)

	observability.Cache().OnCacheHit(context.Background(), "mindmap")
	m.ObserveRequest("GET", "/healthz", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`mindmap_cache_events_total{event="hit",key_type="mindmap"} 1`,
		`mindmap_http_requests_total{code="200",method="GET",route="/healthz"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New("x"), New("x")
	a.OnCacheHit(context.Background(), "mindmap")
	if got := testutil.ToFloat64(b.cacheEvents.WithLabelValues("mindmap", "hit")); got != 0 {
		t.Errorf("registries share state: %v", got)
	}
}
