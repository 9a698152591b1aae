package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/layout"
	"github.com/unixblacksteel/mindmap/pkg/scene"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the depth and, when present, the value to each label.
	Detailed bool
	// Transparent drops the theme background.
	Transparent bool
	// Theme supplies colours. The zero value means scene.DefaultTheme.
	Theme *scene.Theme
}

// ToDOT converts a layout to Graphviz DOT. Node identifiers are the layout
// IDs, so the DOT source and the scene SVG can be cross-referenced.
func ToDOT(l *layout.Layout, opts Options) string {
	theme := scene.DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	bg := theme.Background.Hex()
	if opts.Transparent {
		bg = "transparent"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", bg)
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=%q, color=%q, fontcolor=%q, fontname=%q, fontsize=%g, penwidth=%g];\n",
		theme.Node.Fill.Hex(), theme.Node.Stroke.Hex(), theme.Node.LabelFill.Hex(),
		fontName(theme.FontFamily), theme.FontSize, theme.Node.StrokeWidth)
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=%g, arrowhead=none];\n", theme.Edge.Stroke.Hex(), theme.Edge.Width)
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	if l == nil {
		buf.WriteString("}\n")
		return buf.String()
	}
	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, fmtLabel(n, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source.ID, e.Target.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *layout.LayoutNode, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{n.Name, fmt.Sprintf("depth: %d", n.Depth)}
	if n.Source != nil && n.Source.Value != nil {
		parts = append(parts, "value: "+strconv.FormatFloat(*n.Source.Value, 'g', -1, 64))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG in-process.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterization, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox moves the Graphviz viewBox to the origin and sets pixel
// width and height from it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// fontName picks the first family of a CSS font stack for Graphviz.
func fontName(stack string) string {
	first, _, _ := strings.Cut(stack, ",")
	return strings.Trim(strings.TrimSpace(first), `'"`)
}
