package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	DefaultMarginLeft   = 100
	DefaultMarginRight  = 100
	DefaultMarginTop    = 50
	DefaultMarginBottom = 50
)

// Options sizes the layout canvas. Zero fields take the package defaults.
type Options struct {
	Width, Height float64

	MarginLeft, MarginRight float64
	MarginTop, MarginBottom float64
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.MarginLeft == 0 {
		o.MarginLeft = DefaultMarginLeft
	}
	if o.MarginRight == 0 {
		o.MarginRight = DefaultMarginRight
	}
	if o.MarginTop == 0 {
		o.MarginTop = DefaultMarginTop
	}
	if o.MarginBottom == 0 {
		o.MarginBottom = DefaultMarginBottom
	}
}

// Anchor is the side of a node its label hangs from.
type Anchor string

const (
	AnchorStart Anchor = "start"
	AnchorEnd   Anchor = "end"
)

// LayoutNode is the positioned view of one mind-map node.
type LayoutNode struct {
	ID     string
	Index  int // pre-order position
	Name   string
	Source *mindmap.Node
	Depth  int
	X, Y   float64

	Parent   *LayoutNode
	Children []*LayoutNode
}

// HasChildren reports whether the node is internal.
func (n *LayoutNode) HasChildren() bool { return len(n.Children) > 0 }

// LabelAnchor hangs internal-node labels toward the root and leaf labels
// away from it.
func (n *LayoutNode) LabelAnchor() Anchor {
	if n.HasChildren() {
		return AnchorEnd
	}
	return AnchorStart
}

// Edge links a parent to one child.
type Edge struct {
	Source, Target *LayoutNode
}

// ID is stable within one layout.
func (e Edge) ID() string { return e.Source.ID + "-" + e.Target.ID }

// Path returns SVG path data for a horizontal cubic connector.
func (e Edge) Path() string {
	sx, sy := e.Source.X, e.Source.Y
	tx, ty := e.Target.X, e.Target.Y
	mx := (sx + tx) / 2

	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, sx, sy)
	b.WriteString("C")
	writePoint(&b, mx, sy)
	b.WriteString(" ")
	writePoint(&b, mx, ty)
	b.WriteString(" ")
	writePoint(&b, tx, ty)
	return b.String()
}

// Layout is the positioned tree.
type Layout struct {
	Width, Height             float64
	MarginLeft, MarginTop     float64
	MarginRight, MarginBottom float64
	UsableWidth, UsableHeight float64

	Root     *LayoutNode
	Nodes    []*LayoutNode // pre-order
	Edges    []Edge        // pre-order of target
	MaxDepth int
	Leaves   int

	byID map[string]*LayoutNode
}

// Node returns the node with the given ID.
func (l *Layout) Node(id string) (*LayoutNode, bool) {
	n, ok := l.byID[id]
	return n, ok
}

// EdgesTo returns the edges whose target is id. In a tree that is at most one.
func (l *Layout) EdgesTo(id string) []Edge {
	n, ok := l.byID[id]
	if !ok || n.Parent == nil {
		return nil
	}
	return []Edge{{Source: n.Parent, Target: n}}
}

// Depths groups nodes by depth, each group in pre-order.
func (l *Layout) Depths() [][]*LayoutNode {
	out := make([][]*LayoutNode, l.MaxDepth+1)
	for _, n := range l.Nodes {
		out[n.Depth] = append(out[n.Depth], n)
	}
	return out
}

// Compute lays out root on a canvas described by opts.
func Compute(root *mindmap.Node, opts Options) (*Layout, error) {
	if err := mindmap.Validate(root); err != nil {
		return nil, err
	}
	opts.SetDefaults()

	l := &Layout{
		Width:        opts.Width,
		Height:       opts.Height,
		MarginLeft:   opts.MarginLeft,
		MarginTop:    opts.MarginTop,
		MarginRight:  opts.MarginRight,
		MarginBottom: opts.MarginBottom,
		UsableWidth:  math.Max(1, opts.Width-opts.MarginLeft-opts.MarginRight),
		UsableHeight: math.Max(1, opts.Height-opts.MarginTop-opts.MarginBottom),
		byID:         make(map[string]*LayoutNode),
	}

	l.Root = l.build(root, nil, 0)

	// A root-only tree is a single leaf slot.
	slot := l.UsableHeight / float64(max(l.Leaves, 1))
	var colW float64
	if l.MaxDepth > 0 {
		colW = l.UsableWidth / float64(l.MaxDepth)
	}

	leaf := 0
	var place func(n *LayoutNode) (first, last float64)
	place = func(n *LayoutNode) (float64, float64) {
		n.X = float64(n.Depth) * colW
		if !n.HasChildren() {
			n.Y = (float64(leaf) + 0.5) * slot
			leaf++
			return n.Y, n.Y
		}
		first, last := 0.0, 0.0
		for i, c := range n.Children {
			f, la := place(c)
			if i == 0 {
				first = f
			}
			last = la
		}
		n.Y = (first + last) / 2
		return first, last
	}
	place(l.Root)

	return l, nil
}

func (l *Layout) build(src *mindmap.Node, parent *LayoutNode, depth int) *LayoutNode {
	n := &LayoutNode{
		ID:     "n" + strconv.Itoa(len(l.Nodes)),
		Index:  len(l.Nodes),
		Name:   src.Name,
		Source: src,
		Depth:  depth,
		Parent: parent,
	}
	l.Nodes = append(l.Nodes, n)
	l.byID[n.ID] = n
	l.MaxDepth = max(l.MaxDepth, depth)
	if parent != nil {
		l.Edges = append(l.Edges, Edge{Source: parent, Target: n})
	}
	if len(src.Children) == 0 {
		l.Leaves++
		return n
	}
	n.Children = make([]*LayoutNode, 0, len(src.Children))
	for _, c := range src.Children {
		n.Children = append(n.Children, l.build(c, n, depth+1))
	}
	return n
}

func writePoint(b *strings.Builder, x, y float64) {
	b.WriteString(formatCoord(x))
	b.WriteByte(',')
	b.WriteString(formatCoord(y))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
