package cli

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/unixblacksteel/mindmap/pkg/cache"
	"github.com/unixblacksteel/mindmap/pkg/config"
	"github.com/unixblacksteel/mindmap/pkg/genai"
	"github.com/unixblacksteel/mindmap/pkg/pipeline"
	"github.com/unixblacksteel/mindmap/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mindmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer

	configPath string
	noCache    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.noCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// newClient creates the generation client from configuration.
func (c *CLI) newClient() (*genai.Client, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return genai.New(cfg.GenAI(), genai.WithLogger(c.Logger))
}

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.Open(ctx, cfg.CacheBackend())
}

// newRunner creates a pipeline runner for CLI use. withClient is false for
// commands that only render local trees and must work without an API key.
func (c *CLI) newRunner(ctx context.Context, withClient bool) (*pipeline.Runner, error) {
	var gen pipeline.Generator
	if withClient {
		client, err := c.newClient()
		if err != nil {
			return nil, err
		}
		gen = client
	}
	return c.runnerFor(ctx, gen)
}

// runnerFor creates a runner around gen, which may be nil. Cache keys are
// scoped by API host so trees from different services never mix.
func (c *CLI) runnerFor(ctx context.Context, gen pipeline.Generator) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), keyScope(cfg.API.Endpoint))
	r := pipeline.NewRunner(gen, store, keyer, c.Logger)
	if cfg.Cache.TTL > 0 {
		r.TTL = cfg.Cache.TTL
	}
	return r, nil
}

func keyScope(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host + ":"
}

// renderDefaults returns pipeline options seeded from configuration.
func (c *CLI) renderDefaults() (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Width:      float64(cfg.Render.Width),
		Height:     float64(cfg.Render.Height),
		Rasterizer: cfg.Render.Rasterizer,
	}
	if bg, err := colorful.Hex(cfg.Render.Background); err == nil {
		theme := scene.DefaultTheme()
		theme.Background = bg
		opts.Theme = &theme
	}
	return opts, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
