package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/unixblacksteel/mindmap/pkg/cache"
	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/export"
	"github.com/unixblacksteel/mindmap/pkg/layout"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/nodelink"
	"github.com/unixblacksteel/mindmap/pkg/observability"
	"github.com/unixblacksteel/mindmap/pkg/raster"
	"github.com/unixblacksteel/mindmap/pkg/scene"
)

// Layout validates tree and computes its positions.
func (r *Runner) Layout(ctx context.Context, tree *mindmap.Node, opts Options) (*layout.Layout, error) {
	opts.SetDefaults()
	n := mindmap.Count(tree)

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, n)
	l, err := layout.Compute(tree, opts.layoutOptions())
	observability.Pipeline().OnLayoutComplete(ctx, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.loggerFor(opts).Debug("computed layout", "nodes", n, "depth", l.MaxDepth, "leaves", l.Leaves)
	return l, nil
}

// Render lays out tree and produces one artifact per requested format.
func (r *Runner) Render(ctx context.Context, tree *mindmap.Node, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "no tree to render")
	}

	start := time.Now()
	l, err := r.Layout(ctx, tree, opts)
	if err != nil {
		return nil, err
	}
	layoutTime := time.Since(start)

	treeJSON, err := mindmap.Marshal(tree)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode tree")
	}

	result := &Result{
		Tree:      tree,
		TreeHash:  cache.Hash(treeJSON),
		Layout:    l,
		Scene:     scene.New(l, opts.theme()),
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		Stats: Stats{
			Nodes:      len(l.Nodes),
			Depth:      l.MaxDepth,
			Leaves:     l.Leaves,
			LayoutTime: layoutTime,
		},
	}

	start = time.Now()
	for _, format := range dedupe(opts.Formats) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, hit, err := r.renderFormat(ctx, result, format, opts)
		if err != nil {
			return nil, err
		}
		if hit {
			result.CacheInfo.ArtifactHits = append(result.CacheInfo.ArtifactHits, format)
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(start)

	r.loggerFor(opts).Debug("rendered mind map", "formats", opts.Formats, "nodes", result.Stats.Nodes, "elapsed", result.Stats.RenderTime)
	return result, nil
}

func (r *Runner) renderFormat(ctx context.Context, res *Result, format string, opts Options) ([]byte, bool, error) {
	switch format {
	case FormatSVG:
		return res.Scene.SVG(svgOptions(opts)...), false, nil
	case FormatJSON:
		data, err := EncodeLayout(res.Layout)
		return data, false, err
	case FormatDOT:
		return []byte(nodelink.ToDOT(res.Layout, dotOptions(opts))), false, nil
	case FormatNodelink:
		data, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(res.Layout, dotOptions(opts)))
		return data, false, err
	case FormatPNG, FormatPDF:
		return r.renderRaster(ctx, res, format, opts)
	default:
		return nil, false, ValidateFormat(format)
	}
}

// renderRaster exports through an unshared Exporter so concurrent requests
// do not trip each other's in-progress guard.
func (r *Runner) renderRaster(ctx context.Context, res *Result, format string, opts Options) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(res.TreeHash, opts.artifactKey(format))
	if !opts.Refresh {
		data, ok, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		case ok:
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			return data, true, nil
		default:
			observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		}
	}

	rz, err := raster.New(opts.Rasterizer)
	if err != nil {
		return nil, false, err
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, false, err
	}
	e := export.New(export.WithRasterizer(rz), export.WithLogger(r.loggerFor(opts)))
	art, err := e.Export(ctx, res.Scene, f)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, keyTypeArtifact, art.Data)
	return art.Data, false, nil
}

func svgOptions(opts Options) []scene.SVGOption {
	svgOpts := []scene.SVGOption{scene.IdleStyle()}
	if !opts.Transparent {
		svgOpts = append(svgOpts, scene.WithBackground())
	}
	if opts.Interactive {
		svgOpts = append(svgOpts, scene.WithInteraction())
	}
	return svgOpts
}

func dotOptions(opts Options) nodelink.Options {
	theme := opts.theme()
	return nodelink.Options{
		Detailed:    opts.Detailed,
		Transparent: opts.Transparent,
		Theme:       &theme,
	}
}

func dedupe(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
