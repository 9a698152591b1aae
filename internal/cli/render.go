package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unixblacksteel/mindmap/pkg/pipeline"
)

// renderOpts holds the command-line flags shared by render and generate.
type renderOpts struct {
	output      string  // output file (single format) or base path (multiple)
	formats     string  // comma-separated output formats
	width       float64 // canvas width in pixels
	height      float64 // canvas height in pixels
	interactive bool    // embed hover styling and script in SVG output
	detailed    bool    // annotate dot/nodelink labels with depth and value
	transparent bool    // omit the background from vector output
	rasterizer  string  // raster backend: native or rsvg
	refresh     bool    // bypass the cache
	explore     bool    // open the terminal hover explorer afterwards
}

func (o *renderOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, nodelink (comma-separated)")
	cmd.Flags().Float64Var(&o.width, "width", 0, "canvas width in pixels (default from config)")
	cmd.Flags().Float64Var(&o.height, "height", 0, "canvas height in pixels (default from config)")
	cmd.Flags().BoolVar(&o.interactive, "interactive", false, "embed hover highlighting in SVG output")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "show depth and value in dot/nodelink labels")
	cmd.Flags().BoolVar(&o.transparent, "transparent", false, "omit the background from svg, dot and nodelink output")
	cmd.Flags().StringVar(&o.rasterizer, "rasterizer", "", "raster backend: native, rsvg (default from config)")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&o.explore, "explore", false, "browse the rendered tree with hover highlighting in the terminal")
}

// pipelineOptions overlays flags on the configured defaults.
func (c *CLI) pipelineOptions(o *renderOpts) (pipeline.Options, error) {
	opts, err := c.renderDefaults()
	if err != nil {
		return opts, err
	}
	if o.width > 0 {
		opts.Width = o.width
	}
	if o.height > 0 {
		opts.Height = o.height
	}
	if o.rasterizer != "" {
		opts.Rasterizer = o.rasterizer
	}
	opts.Formats = parseFormats(o.formats)
	opts.Interactive = o.interactive
	opts.Detailed = o.detailed
	opts.Transparent = o.transparent
	opts.Refresh = o.refresh
	opts.Logger = c.Logger
	return opts, opts.ValidateAndSetDefaults()
}

// renderCommand creates the render command for local tree documents.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	var watch bool

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a JSON or YAML mind-map document",
		Long: `Render lays out a hierarchical document ({"name": ..., "children": [...]})
as a horizontal tree and writes one file per requested format.

With --watch the document is re-rendered every time it is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			popts, err := c.pipelineOptions(&opts)
			if err != nil {
				return err
			}

			render := func() (*pipeline.Result, error) {
				return c.renderInput(ctx, runner, pipeline.Input{Path: path}, popts, outputBase(opts.output, path))
			}

			res, err := render()
			if err != nil {
				return err
			}
			if opts.explore {
				if err := runExplorer(res.Scene); err != nil {
					return err
				}
			}
			if !watch {
				return nil
			}
			return watchFile(ctx, path, c.Logger, func() error {
				_, err := render()
				return err
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when the file changes")

	return cmd
}

// renderInput runs the pipeline and writes every artifact next to base.
func (c *CLI) renderInput(ctx context.Context, runner *pipeline.Runner, in pipeline.Input, opts pipeline.Options, base string) (*pipeline.Result, error) {
	prog := newProgress(c.Logger)
	res, err := runner.Run(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	files, err := writeArtifacts(res.Artifacts, opts.Formats, base)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Rendered %d nodes", res.Stats.Nodes))

	printSuccess("Rendered %s", StyleHighlight.Render(res.Tree.Name))
	printStats(res.Stats.Nodes, res.Stats.Depth, res.Stats.Leaves, res.CacheInfo.TreeHit)
	for _, f := range files {
		printArtifact(f.path, f.size)
	}
	return res, nil
}

// outputBase picks the base path: the explicit output, else the input file
// name without extension.
func outputBase(output, input string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// outputPath names the file for one format. A base that already ends in the
// format's extension is used unchanged.
func outputPath(base, format string) string {
	ext := "." + extension(format)
	if strings.HasSuffix(base, ext) {
		return base
	}
	return base + ext
}

func extension(format string) string {
	if format == pipeline.FormatNodelink {
		return "nodelink.svg"
	}
	return format
}

// writtenFile is one artifact on disk.
type writtenFile struct {
	path string
	size int
}

// writeArtifacts writes artifacts in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) ([]writtenFile, error) {
	var files []writtenFile
	seen := map[string]bool{}
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := outputPath(base, f)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, writtenFile{path: path, size: len(data)})
	}
	return files, nil
}
