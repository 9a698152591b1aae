package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"MINDMAP_API_KEY", "GEMINI_API_KEY", "API_KEY", "MINDMAP_ENDPOINT", "MINDMAP_CACHE"} {
		t.Setenv(k, "")
	}
	path := writeConfig(t, `
[api]
api_key = "from-file"
timeout = "30s"

[render]
width = 1200
rasterizer = "rsvg"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "1h"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.APIKey != "from-file" || cfg.API.Timeout != 30*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Render.Width != 1200 || cfg.Render.Height != 600 || cfg.Render.Rasterizer != "rsvg" {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL != time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if got := cfg.CacheBackend(); got.RedisAddr != "localhost:6379" {
		t.Errorf("CacheBackend() = %+v", got)
	}
	if got := cfg.GenAI(); got.APIKey != "from-file" || got.TextModel != "gemini-3-flash-preview" {
		t.Errorf("GenAI() = %+v", got)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := Load(""); err != nil {
		t.Errorf("Load(default, missing) error = %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load(explicit, missing) should fail")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[api\n", "parse"},
		{"unknown key", "[render]\ncolour = 1\n", "unknown key"},
		{"bad rasterizer", "[render]\nrasterizer = \"cairo\"\n", "render.rasterizer must be one of"},
		{"bad background", "[render]\nbackground = \"black\"\n", "render.background must be a hex color"},
		{"negative width", "[render]\nwidth = -5\n", "render.width must be greater than 0"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", "cache.redis_addr is required"},
		{"bad endpoint", "[api]\nendpoint = \"not a url\"\n", "api.endpoint must be a URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MINDMAP_ENDPOINT", "")
			t.Setenv("MINDMAP_CACHE", "")
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":   "gemini",
		"API_KEY":          "generic",
		"MINDMAP_ENDPOINT": "http://localhost:9999/v1beta",
		"MINDMAP_CACHE":    "none",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	cfg.ApplyEnv(lookup)
	if cfg.API.APIKey != "gemini" {
		t.Errorf("APIKey = %q, GEMINI_API_KEY should win over API_KEY", cfg.API.APIKey)
	}
	if cfg.API.Endpoint != "http://localhost:9999/v1beta" || cfg.Cache.Backend != "none" {
		t.Errorf("cfg = %+v", cfg)
	}

	env["MINDMAP_API_KEY"] = "mindmap"
	cfg.ApplyEnv(lookup)
	if cfg.API.APIKey != "mindmap" {
		t.Errorf("APIKey = %q, MINDMAP_API_KEY should win", cfg.API.APIKey)
	}
}
