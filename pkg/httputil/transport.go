package httputil

import (
	"net/http"
	"time"

	"github.com/unixblacksteel/mindmap/pkg/observability"
)

// Transport reports every round trip to the registered HTTP hooks.
type Transport struct {
	// Base performs the request. Nil means http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}
