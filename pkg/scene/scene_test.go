package scene

import (
	"testing"
	"time"

	"github.com/unixblacksteel/mindmap/pkg/layout"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newScene(t *testing.T, root *mindmap.Node) *Scene {
	t.Helper()
	l, err := layout.Compute(root, layout.Options{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("layout.Compute() error = %v", err)
	}
	return New(l, DefaultTheme())
}

func siblings() *mindmap.Node {
	return mindmap.New("root", mindmap.New("A"), mindmap.New("B"), mindmap.New("C"))
}

func assertIdle(t *testing.T, s *Scene, id string) {
	t.Helper()
	m, _ := s.Node(id)
	if m.State() != Idle {
		t.Errorf("%s state = %v, want idle", id, m.State())
	}
	if m.Attrs != s.theme.Node {
		t.Errorf("%s attrs = %+v, want idle %+v", id, m.Attrs, s.theme.Node)
	}
	if e, ok := s.EdgeTo(id); ok && e.Attrs != s.theme.Edge {
		t.Errorf("edge to %s attrs = %+v, want idle %+v", id, e.Attrs, s.theme.Edge)
	}
}

func assertHovered(t *testing.T, s *Scene, id string) {
	t.Helper()
	m, _ := s.Node(id)
	if m.State() != Hovered {
		t.Errorf("%s state = %v, want hovered", id, m.State())
	}
	if m.Attrs != s.theme.NodeHover {
		t.Errorf("%s attrs = %+v, want hover %+v", id, m.Attrs, s.theme.NodeHover)
	}
	if e, ok := s.EdgeTo(id); ok && e.Attrs != s.theme.EdgeHover {
		t.Errorf("edge to %s attrs = %+v, want hover %+v", id, e.Attrs, s.theme.EdgeHover)
	}
}

func TestNewStartsIdle(t *testing.T) {
	s := newScene(t, siblings())
	if len(s.Nodes()) != 4 || len(s.Edges()) != 3 {
		t.Fatalf("marks = %d nodes, %d edges", len(s.Nodes()), len(s.Edges()))
	}
	for _, m := range s.Nodes() {
		assertIdle(t, s, m.Node.ID)
		if m.Reveal() != 1 {
			t.Errorf("%s reveal = %v, want 1", m.Node.ID, m.Reveal())
		}
	}
	if _, ok := s.Hovered(); ok {
		t.Error("new scene has a hovered node")
	}
}

func TestHoverInOutRestoresIdle(t *testing.T) {
	s := newScene(t, siblings())

	if !s.PointerEnter("n1", t0) {
		t.Fatal("PointerEnter(n1) = false")
	}
	if got := s.State("n1"); got != Entering {
		t.Errorf("state after enter = %v, want entering", got)
	}

	s.Tick(t0.Add(100 * time.Millisecond))
	m, _ := s.Node("n1")
	if m.Attrs.Radius <= s.theme.Node.Radius || m.Attrs.Radius >= s.theme.NodeHover.Radius {
		t.Errorf("mid-transition radius = %v, want between idle and hover", m.Attrs.Radius)
	}

	if s.Tick(t0.Add(200 * time.Millisecond)) {
		t.Error("Tick() reports running after enter completed")
	}
	assertHovered(t, s, "n1")

	t1 := t0.Add(time.Second)
	if !s.PointerLeave("n1", t1) {
		t.Fatal("PointerLeave(n1) = false")
	}
	if got := s.State("n1"); got != Leaving {
		t.Errorf("state after leave = %v, want leaving", got)
	}
	s.Tick(t1.Add(150 * time.Millisecond))
	s.Tick(t1.Add(300 * time.Millisecond))
	assertIdle(t, s, "n1")
	if _, ok := s.Hovered(); ok {
		t.Error("hovered slot not cleared")
	}
}

func TestInterruptedEnterConverges(t *testing.T) {
	s := newScene(t, siblings())
	s.PointerEnter("n1", t0)
	s.Tick(t0.Add(80 * time.Millisecond))
	s.PointerLeave("n1", t0.Add(80*time.Millisecond))
	s.Tick(t0.Add(200 * time.Millisecond))
	if s.State("n1") != Leaving {
		t.Errorf("state = %v, want leaving", s.State("n1"))
	}
	s.Tick(t0.Add(380 * time.Millisecond))
	assertIdle(t, s, "n1")
}

func TestRapidHoverLastWins(t *testing.T) {
	s := newScene(t, siblings())

	s.PointerEnter("n1", t0)
	s.Tick(t0.Add(30 * time.Millisecond))
	s.PointerEnter("n2", t0.Add(30*time.Millisecond))
	s.Tick(t0.Add(60 * time.Millisecond))
	s.PointerEnter("n3", t0.Add(60*time.Millisecond))
	// late leave events for superseded nodes must not disturb the slot
	if s.PointerLeave("n1", t0.Add(70*time.Millisecond)) {
		t.Error("stale PointerLeave(n1) was accepted")
	}
	s.PointerLeave("n2", t0.Add(75*time.Millisecond))

	if id, _ := s.Hovered(); id != "n3" {
		t.Fatalf("Hovered() = %q, want n3", id)
	}
	if s.State("n1") != Leaving || s.State("n2") != Leaving {
		t.Errorf("states = %v, %v, want leaving", s.State("n1"), s.State("n2"))
	}

	s.Tick(t0.Add(time.Second))
	assertIdle(t, s, "n1")
	assertIdle(t, s, "n2")
	assertHovered(t, s, "n3")

	hovered := 0
	for _, m := range s.Nodes() {
		if m.State() == Hovered || m.State() == Entering {
			hovered++
		}
	}
	if hovered != 1 {
		t.Errorf("%d nodes hovered, want 1", hovered)
	}
}

func TestPointerEnterIgnoresUnknownAndRepeat(t *testing.T) {
	s := newScene(t, siblings())
	if s.PointerEnter("nope", t0) {
		t.Error("PointerEnter(unknown) = true")
	}
	s.PointerEnter("n2", t0)
	if s.PointerEnter("n2", t0.Add(10*time.Millisecond)) {
		t.Error("repeated PointerEnter = true")
	}
	if s.State("nope") != Idle {
		t.Error("unknown node not idle")
	}
}

func TestHoverKeepsPositions(t *testing.T) {
	s := newScene(t, siblings())
	before := make(map[string][2]float64)
	for _, m := range s.Nodes() {
		before[m.Node.ID] = [2]float64{m.Node.X, m.Node.Y}
	}
	s.PointerEnter("n1", t0)
	s.PointerEnter("n2", t0.Add(10*time.Millisecond))
	s.Settle()
	for _, m := range s.Nodes() {
		if got := [2]float64{m.Node.X, m.Node.Y}; got != before[m.Node.ID] {
			t.Errorf("%s moved from %v to %v", m.Node.ID, before[m.Node.ID], got)
		}
	}
}

func TestSettle(t *testing.T) {
	s := newScene(t, siblings())
	s.Animate(t0)
	s.PointerEnter("n3", t0)
	s.Settle()
	assertHovered(t, s, "n3")
	for _, m := range s.Nodes() {
		if m.Reveal() != 1 {
			t.Errorf("%s reveal = %v after Settle", m.Node.ID, m.Reveal())
		}
	}
}

func TestEntranceStaggeredByDepth(t *testing.T) {
	s := newScene(t, mindmap.New("root", mindmap.New("a", mindmap.New("a1"))))
	s.Animate(t0)

	root, _ := s.Node("n0")
	child, _ := s.Node("n1")
	grand, _ := s.Node("n2")
	if root.Reveal() != 0 || child.Reveal() != 0 {
		t.Fatalf("reveal before tick = %v, %v", root.Reveal(), child.Reveal())
	}

	if !s.Tick(t0.Add(300 * time.Millisecond)) {
		t.Error("Tick() = false during entrance")
	}
	if !(root.Reveal() > child.Reveal()) {
		t.Errorf("root reveal %v not ahead of child %v", root.Reveal(), child.Reveal())
	}
	if grand.Reveal() != 0 {
		t.Errorf("depth-2 reveal = %v before its delay", grand.Reveal())
	}
	edge, _ := s.EdgeTo("n1")
	if edge.Reveal() <= 0 || edge.Reveal() >= 1 {
		t.Errorf("edge reveal = %v, want mid-fade", edge.Reveal())
	}

	if s.Tick(t0.Add(2 * time.Second)) {
		t.Error("Tick() = true after entrance finished")
	}
	for _, m := range s.Nodes() {
		if m.Reveal() != 1 {
			t.Errorf("%s reveal = %v, want 1", m.Node.ID, m.Reveal())
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "idle"},
		{Entering, "entering"},
		{Hovered, "hovered"},
		{Leaving, "leaving"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
