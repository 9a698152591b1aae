package scene

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/unixblacksteel/mindmap/pkg/layout"
)

// SVGOption configures serialization.
type SVGOption func(*svgConfig)

type svgConfig struct {
	idle        bool
	interactive bool
	background  bool
}

// IdleStyle serializes idle, fully revealed styling regardless of the scene's
// current hover and entrance state.
func IdleStyle() SVGOption { return func(c *svgConfig) { c.idle = true } }

// WithInteraction embeds hover CSS, entrance keyframes and the pointer script.
func WithInteraction() SVGOption { return func(c *svgConfig) { c.interactive = true } }

// WithBackground paints the theme background behind the scene.
func WithBackground() SVGOption { return func(c *svgConfig) { c.background = true } }

// SVG returns the serialized scene.
func (s *Scene) SVG(opts ...SVGOption) []byte {
	var buf bytes.Buffer
	s.WriteSVG(&buf, opts...)
	return buf.Bytes()
}

// Serialize returns the self-contained export form of the scene: idle styling,
// no script, transparent background.
func (s *Scene) Serialize() []byte {
	return s.SVG(IdleStyle())
}

// WriteSVG writes the scene to w.
func (s *Scene) WriteSVG(w io.Writer, opts ...SVGOption) {
	var cfg svgConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	width, height := s.Size()
	canvas := svg.New(w)
	canvas.Start(width, height)
	if cfg.interactive {
		canvas.Style("text/css", interactionCSS(s.theme, s.layout.MaxDepth))
	}
	if cfg.background {
		canvas.Rect(0, 0, width, height, "fill:"+s.theme.Background.Hex())
	}

	canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(s.layout.MarginLeft), num(s.layout.MarginTop)))

	canvas.Group(`class="links"`)
	for _, m := range s.edges {
		attrs, rev := m.Attrs, m.reveal.value
		if cfg.idle {
			attrs, rev = s.theme.Edge, 1
		}
		opacity := lerp(s.theme.LinkInitialOpacity, attrs.Opacity, rev)
		canvas.Path(m.Edge.Path(),
			`class="link"`,
			attr("id", "link-"+m.Edge.Target.ID),
			attr("data-target", m.Edge.Target.ID),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-opacity:%s",
				attrs.Stroke.Hex(), num(attrs.Width), num(opacity)),
		)
	}
	canvas.Gend()

	canvas.Group(`class="nodes"`)
	for _, m := range s.nodes {
		attrs, rev := m.Attrs, m.reveal.value
		if cfg.idle {
			attrs, rev = s.theme.Node, 1
		}
		s.writeNode(canvas, m.Node, attrs, rev)
	}
	canvas.Gend()

	canvas.Gend()

	if cfg.interactive {
		canvas.Script("text/javascript", interactionJS)
	}
	canvas.End()
}

func (s *Scene) writeNode(canvas *svg.SVG, n *layout.LayoutNode, a NodeAttrs, rev float64) {
	canvas.Group(
		`class="node"`,
		attr("id", n.ID),
		attr("data-depth", strconv.Itoa(n.Depth)),
		attr("transform", fmt.Sprintf("translate(%s,%s)", num(n.X), num(n.Y))),
	)
	canvas.Circle(0, 0, int(math.Round(a.Radius*rev)),
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%s", a.Fill.Hex(), a.Stroke.Hex(), num(a.StrokeWidth)))

	dx := int(math.Round(s.theme.LabelOffset))
	if n.LabelAnchor() == layout.AnchorEnd {
		dx = -dx
	}
	canvas.Text(dx, 0, n.Name,
		attr("dy", num(s.theme.LabelShift)+"em"),
		attr("text-anchor", string(n.LabelAnchor())),
		labelStyle(s.theme, a, rev),
	)
	canvas.Gend()
}

func labelStyle(t Theme, a NodeAttrs, opacity float64) string {
	return fmt.Sprintf("fill:%s;fill-opacity:%s;font-family:%s;font-size:%spx;font-weight:%d",
		a.LabelFill.Hex(), num(opacity), t.FontFamily, num(t.FontSize), int(math.Round(a.LabelWeight/100))*100)
}

func attr(name, value string) string {
	return name + `="` + value + `"`
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
