package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

func balanced(depth, fanout int) *mindmap.Node {
	var build func(prefix string, d int) *mindmap.Node
	build = func(prefix string, d int) *mindmap.Node {
		n := mindmap.New(prefix)
		if d == depth {
			return n
		}
		for i := 0; i < fanout; i++ {
			n.Children = append(n.Children, build(fmt.Sprintf("%s.%d", prefix, i), d+1))
		}
		return n
	}
	return build("root", 0)
}

// skewed hangs every subtree off the first child, with one extra leaf per level.
func skewed(depth int) *mindmap.Node {
	root := mindmap.New("root")
	cur := root
	for d := 0; d < depth; d++ {
		next := mindmap.New(fmt.Sprintf("spine-%d", d))
		cur.Children = []*mindmap.Node{next, mindmap.New(fmt.Sprintf("leaf-%d", d))}
		cur = next
	}
	return root
}

func chain(depth int) *mindmap.Node {
	root := mindmap.New("root")
	cur := root
	for d := 0; d < depth; d++ {
		next := mindmap.New(fmt.Sprintf("c%d", d))
		cur.Children = []*mindmap.Node{next}
		cur = next
	}
	return root
}

func TestComputeTreeProperty(t *testing.T) {
	tests := []struct {
		name string
		root *mindmap.Node
	}{
		{"single", mindmap.New("root")},
		{"pair", mindmap.New("root", mindmap.New("child"))},
		{"balanced", balanced(3, 3)},
		{"skewed", skewed(6)},
		{"chain", chain(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.root, Options{})
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			n := mindmap.Count(tt.root)
			if len(l.Nodes) != n {
				t.Errorf("nodes = %d, want %d", len(l.Nodes), n)
			}
			if len(l.Edges) != n-1 {
				t.Errorf("edges = %d, want %d", len(l.Edges), n-1)
			}
			for _, e := range l.Edges {
				if s, ok := l.Node(e.Source.ID); !ok || s != e.Source {
					t.Errorf("edge %s source missing from layout", e.ID())
				}
				if d, ok := l.Node(e.Target.ID); !ok || d != e.Target {
					t.Errorf("edge %s target missing from layout", e.ID())
				}
			}
		})
	}
}

func TestComputeDepths(t *testing.T) {
	l, err := Compute(balanced(3, 2), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if l.Root.Depth != 0 {
		t.Errorf("root depth = %d, want 0", l.Root.Depth)
	}
	for _, n := range l.Nodes {
		for _, c := range n.Children {
			if c.Depth != n.Depth+1 {
				t.Errorf("%s depth = %d, parent %s depth = %d", c.ID, c.Depth, n.ID, n.Depth)
			}
			if c.Parent != n {
				t.Errorf("%s parent mismatch", c.ID)
			}
		}
	}
	if l.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", l.MaxDepth)
	}
}

func TestComputeNonOverlap(t *testing.T) {
	tests := []struct {
		name string
		root *mindmap.Node
	}{
		{"balanced", balanced(4, 3)},
		{"skewed", skewed(8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.root, Options{Width: 960})
			if err != nil {
				t.Fatal(err)
			}
			for depth, row := range l.Depths() {
				seen := make(map[float64]string)
				for _, n := range row {
					if other, dup := seen[n.Y]; dup {
						t.Errorf("depth %d: %s and %s share y=%v", depth, n.ID, other, n.Y)
					}
					seen[n.Y] = n.ID
				}
				for i := 1; i < len(row); i++ {
					if row[i].Y <= row[i-1].Y {
						t.Errorf("depth %d: %s above its left sibling band", depth, row[i].ID)
					}
				}
			}
		})
	}
}

func TestComputeCentering(t *testing.T) {
	l, err := Compute(balanced(2, 3), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range l.Nodes {
		if !n.HasChildren() {
			continue
		}
		lo, hi := leafSpan(n)
		if want := (lo + hi) / 2; math.Abs(n.Y-want) > 1e-9 {
			t.Errorf("%s y = %v, want midpoint %v", n.ID, n.Y, want)
		}
	}
}

func leafSpan(n *LayoutNode) (float64, float64) {
	if !n.HasChildren() {
		return n.Y, n.Y
	}
	lo, _ := leafSpan(n.Children[0])
	_, hi := leafSpan(n.Children[len(n.Children)-1])
	return lo, hi
}

func TestComputeSingleNode(t *testing.T) {
	l, err := Compute(mindmap.New("alone"), Options{Width: 400, Height: 600})
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Edges) != 0 {
		t.Errorf("edges = %d, want 0", len(l.Edges))
	}
	r := l.Root
	if math.IsNaN(r.X) || math.IsInf(r.X, 0) || math.IsNaN(r.Y) || math.IsInf(r.Y, 0) {
		t.Fatalf("root position = (%v, %v)", r.X, r.Y)
	}
	if r.X != 0 {
		t.Errorf("root x = %v, want 0", r.X)
	}
	if want := l.UsableHeight / 2; r.Y != want {
		t.Errorf("root y = %v, want %v", r.Y, want)
	}
}

func TestComputeGeometry(t *testing.T) {
	root := mindmap.New("root", mindmap.New("a"), mindmap.New("b"))
	l, err := Compute(root, Options{Width: 600, Height: 500})
	if err != nil {
		t.Fatal(err)
	}
	// usable 400x400, two leaf slots of 200
	a, _ := l.Node("n1")
	b, _ := l.Node("n2")
	if a.X != 400 || a.Y != 100 {
		t.Errorf("a = (%v, %v), want (400, 100)", a.X, a.Y)
	}
	if b.X != 400 || b.Y != 300 {
		t.Errorf("b = (%v, %v), want (400, 300)", b.X, b.Y)
	}
	if l.Root.Y != 200 {
		t.Errorf("root y = %v, want 200", l.Root.Y)
	}
	if got, want := l.Edges[0].Path(), "M0,200C200,200 200,100 400,100"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestComputeTinyCanvas(t *testing.T) {
	l, err := Compute(balanced(2, 2), Options{Width: 50, Height: 20})
	if err != nil {
		t.Fatal(err)
	}
	if l.UsableWidth != 1 || l.UsableHeight != 1 {
		t.Errorf("usable = %vx%v, want 1x1", l.UsableWidth, l.UsableHeight)
	}
}

func TestComputeInvalid(t *testing.T) {
	tests := []struct {
		name string
		root *mindmap.Node
	}{
		{"nil", nil},
		{"empty name", mindmap.New("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.root, Options{})
			if !errors.Is(err, errors.ErrCodeInvalidTree) {
				t.Errorf("Compute() error = %v, want INVALID_TREE", err)
			}
		})
	}
}

func TestComputeFresh(t *testing.T) {
	first, err := Compute(balanced(2, 2), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Compute(mindmap.New("other", mindmap.New("x")), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Nodes) != 2 {
		t.Errorf("second layout has %d nodes, want 2", len(second.Nodes))
	}
	if _, ok := second.Node("n5"); ok {
		t.Error("second layout leaked a node from the first")
	}
	if len(first.Nodes) != 7 {
		t.Errorf("first layout mutated: %d nodes", len(first.Nodes))
	}
}

func TestLabelAnchorAndEdgesTo(t *testing.T) {
	l, err := Compute(mindmap.New("root", mindmap.New("leaf")), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if l.Root.LabelAnchor() != AnchorEnd {
		t.Errorf("root anchor = %v, want end", l.Root.LabelAnchor())
	}
	leaf, _ := l.Node("n1")
	if leaf.LabelAnchor() != AnchorStart {
		t.Errorf("leaf anchor = %v, want start", leaf.LabelAnchor())
	}
	if got := l.EdgesTo("n1"); len(got) != 1 || got[0].Source != l.Root {
		t.Errorf("EdgesTo(n1) = %v", got)
	}
	if got := l.EdgesTo("n0"); len(got) != 0 {
		t.Errorf("EdgesTo(root) = %v, want none", got)
	}
}
