package scene

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/unixblacksteel/mindmap/pkg/fonts"
)

// NodeAttrs are the animatable attributes of a node marker and its label.
type NodeAttrs struct {
	Radius      float64
	Fill        colorful.Color
	Stroke      colorful.Color
	StrokeWidth float64
	LabelFill   colorful.Color
	LabelWeight float64
}

// Lerp interpolates from a to b. Colors blend in RGB.
func (a NodeAttrs) Lerp(b NodeAttrs, t float64) NodeAttrs {
	return NodeAttrs{
		Radius:      lerp(a.Radius, b.Radius, t),
		Fill:        a.Fill.BlendRgb(b.Fill, t),
		Stroke:      a.Stroke.BlendRgb(b.Stroke, t),
		StrokeWidth: lerp(a.StrokeWidth, b.StrokeWidth, t),
		LabelFill:   a.LabelFill.BlendRgb(b.LabelFill, t),
		LabelWeight: lerp(a.LabelWeight, b.LabelWeight, t),
	}
}

// EdgeAttrs are the animatable attributes of a connector.
type EdgeAttrs struct {
	Stroke  colorful.Color
	Width   float64
	Opacity float64
}

// Lerp interpolates from a to b.
func (a EdgeAttrs) Lerp(b EdgeAttrs, t float64) EdgeAttrs {
	return EdgeAttrs{
		Stroke:  a.Stroke.BlendRgb(b.Stroke, t),
		Width:   lerp(a.Width, b.Width, t),
		Opacity: lerp(a.Opacity, b.Opacity, t),
	}
}

// Theme holds idle and hover styling plus animation timing.
type Theme struct {
	Background colorful.Color

	Node      NodeAttrs
	NodeHover NodeAttrs
	Edge      EdgeAttrs
	EdgeHover EdgeAttrs

	FontFamily  string
	FontSize    float64
	LabelOffset float64 // horizontal gap between circle center and label
	LabelShift  float64 // vertical label shift in em

	EnterDuration time.Duration
	LeaveDuration time.Duration

	RevealDuration     time.Duration
	RevealStagger      time.Duration // per depth level
	LinkFadeDuration   time.Duration
	LinkInitialOpacity float64
}

// DefaultTheme is the dark Blacksteel palette.
func DefaultTheme() Theme {
	white := colorful.Color{R: 1, G: 1, B: 1}
	accent := mustHex("#ef4444")
	slate := mustHex("#e2e8f0")
	return Theme{
		Background: mustHex("#121214"),
		Node: NodeAttrs{
			Radius:      6,
			Fill:        mustHex("#0a0a0b"),
			Stroke:      slate,
			StrokeWidth: 2,
			LabelFill:   slate,
			LabelWeight: 400,
		},
		NodeHover: NodeAttrs{
			Radius:      9,
			Fill:        accent,
			Stroke:      white,
			StrokeWidth: 3,
			LabelFill:   white,
			LabelWeight: 700,
		},
		Edge:      EdgeAttrs{Stroke: accent, Width: 1.5, Opacity: 0.6},
		EdgeHover: EdgeAttrs{Stroke: white, Width: 2.5, Opacity: 1},

		FontFamily:  fonts.Family,
		FontSize:    14,
		LabelOffset: 12,
		LabelShift:  0.31,

		EnterDuration: 200 * time.Millisecond,
		LeaveDuration: 300 * time.Millisecond,

		RevealDuration:     500 * time.Millisecond,
		RevealStagger:      200 * time.Millisecond,
		LinkFadeDuration:   time.Second,
		LinkInitialOpacity: 0.4,
	}
}

// mustHex parses a theme color literal.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("scene: bad color " + s)
	}
	return c
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// easeCubicInOut is the default d3 easing.
func easeCubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
