// Package pipeline provides the core mind-map processing pipeline.
//
// The pipeline consists of three stages:
//  1. Generate: resolve a topic into a [mindmap.Node] tree (cached)
//  2. Layout: compute node positions for the canvas size
//  3. Render: produce output artifacts (SVG, PNG, PDF, JSON, DOT)
//
// This package is shared between the CLI and the HTTP server, so both surfaces
// produce byte-identical artifacts for the same tree and options.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, c, nil, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, "Quantum computing", pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG, pipeline.FormatPNG},
//	})
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/unixblacksteel/mindmap/pkg/cache"
	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/layout"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/raster"
	"github.com/unixblacksteel/mindmap/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

// Output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatNodelink = "nodelink" // Graphviz-rendered SVG of the DOT source
)

// Default values.
const (
	DefaultWidth  = layout.DefaultWidth
	DefaultHeight = layout.DefaultHeight

	// MaxDimension caps the canvas on either axis.
	MaxDimension = 8192
)

// ValidFormats lists every format Render accepts.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatNodelink: true,
}

// rasterFormats go through the export pipeline and are worth caching.
var rasterFormats = map[string]bool{
	FormatPNG: true,
	FormatPDF: true,
}

// MIMEType returns the media type of a format.
func MIMEType(format string) string {
	switch format {
	case FormatSVG, FormatNodelink:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/octet-stream"
	}
}

// =============================================================================
// Options
// =============================================================================

// Options configures the layout and render stages.
type Options struct {
	// Canvas size in pixels. Zero values take DefaultWidth and DefaultHeight.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Formats to render. Empty means svg only.
	Formats []string `json:"formats,omitempty"`

	// Interactive embeds hover styling and the pointer script in SVG output.
	Interactive bool `json:"interactive,omitempty"`
	// Detailed adds depth and value annotations to dot and nodelink labels.
	Detailed bool `json:"detailed,omitempty"`
	// Transparent omits the background from svg, dot and nodelink output.
	// Raster formats are always opaque.
	Transparent bool `json:"transparent,omitempty"`

	// Rasterizer names the raster backend (raster.KindNative or raster.KindRSVG).
	Rasterizer string `json:"rasterizer,omitempty"`

	// Refresh bypasses cached trees and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Theme overrides scene.DefaultTheme.
	Theme *scene.Theme `json:"-"`

	// Logger overrides the runner's logger for this call.
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero fields. Safe to call more than once.
func (o *Options) SetDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	if o.Rasterizer == "" {
		o.Rasterizer = raster.KindNative
	}
}

// Validate checks options after defaults are applied.
func (o *Options) Validate() error {
	if o.Width > MaxDimension || o.Height > MaxDimension {
		return errors.New(errors.ErrCodeInvalidInput, "canvas %gx%g exceeds %d pixels per side", o.Width, o.Height, MaxDimension)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if _, err := raster.New(o.Rasterizer); err != nil {
		return err
	}
	return nil
}

// ValidateAndSetDefaults applies defaults then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// theme returns the configured theme or the default.
func (o *Options) theme() scene.Theme {
	if o.Theme != nil {
		return *o.Theme
	}
	return scene.DefaultTheme()
}

func (o *Options) layoutOptions() layout.Options {
	return layout.Options{Width: o.Width, Height: o.Height}
}

// artifactKey identifies a raster artifact in the cache.
func (o *Options) artifactKey(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Width:      int(o.Width),
		Height:     int(o.Height),
		Rasterizer: o.Rasterizer,
		Background: o.theme().Background.Hex(),
	}
}

// ValidateFormat reports whether format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be svg, png, pdf, json, dot or nodelink)", format)
	}
	return nil
}

// ValidateFormats validates every entry.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	Tree      *mindmap.Node
	TreeHash  string
	Layout    *layout.Layout
	Scene     *scene.Scene
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats describes the rendered tree and stage timings.
type Stats struct {
	Nodes        int           `json:"nodes"`
	Depth        int           `json:"depth"`
	Leaves       int           `json:"leaves"`
	GenerateTime time.Duration `json:"generate_time"`
	LayoutTime   time.Duration `json:"layout_time"`
	RenderTime   time.Duration `json:"render_time"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	TreeHit      bool     `json:"tree_hit"`
	ArtifactHits []string `json:"artifact_hits,omitempty"`
}
