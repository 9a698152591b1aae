package scene

import (
	"math"
	"time"

	"github.com/unixblacksteel/mindmap/pkg/layout"
)

// State is a node's highlight state.
type State int

const (
	Idle State = iota
	Entering
	Hovered
	Leaving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Entering:
		return "entering"
	case Hovered:
		return "hovered"
	case Leaving:
		return "leaving"
	default:
		return "unknown"
	}
}

// NodeMark is the drawable form of one layout node.
type NodeMark struct {
	Node  *layout.LayoutNode
	Attrs NodeAttrs

	state  State
	anim   transition[NodeAttrs]
	reveal reveal
}

// State returns the mark's highlight state.
func (m *NodeMark) State() State { return m.state }

// Reveal returns the entrance progress in [0, 1].
func (m *NodeMark) Reveal() float64 { return m.reveal.value }

// EdgeMark is the drawable form of one edge.
type EdgeMark struct {
	Edge  layout.Edge
	Attrs EdgeAttrs

	anim   transition[EdgeAttrs]
	reveal reveal
}

// Reveal returns the entrance progress in [0, 1].
func (m *EdgeMark) Reveal() float64 { return m.reveal.value }

// Scene is a rendered mind map with its interaction state.
type Scene struct {
	layout *layout.Layout
	theme  Theme

	nodes  []*NodeMark
	edges  []*EdgeMark
	byID   map[string]*NodeMark
	edgeTo map[string]*EdgeMark

	hovered string
}

// New builds a scene for l. All marks start idle and fully revealed; call
// Animate to play the entrance.
func New(l *layout.Layout, theme Theme) *Scene {
	s := &Scene{
		layout: l,
		theme:  theme,
		nodes:  make([]*NodeMark, 0, len(l.Nodes)),
		edges:  make([]*EdgeMark, 0, len(l.Edges)),
		byID:   make(map[string]*NodeMark, len(l.Nodes)),
		edgeTo: make(map[string]*EdgeMark, len(l.Edges)),
	}
	for _, n := range l.Nodes {
		m := &NodeMark{Node: n, Attrs: theme.Node}
		m.reveal.value = 1
		s.nodes = append(s.nodes, m)
		s.byID[n.ID] = m
	}
	for _, e := range l.Edges {
		m := &EdgeMark{Edge: e, Attrs: theme.Edge}
		m.reveal.value = 1
		s.edges = append(s.edges, m)
		s.edgeTo[e.Target.ID] = m
	}
	return s
}

// Layout returns the layout the scene draws.
func (s *Scene) Layout() *layout.Layout { return s.layout }

// Theme returns the scene's theme.
func (s *Scene) Theme() Theme { return s.theme }

// Size returns the canvas size in whole pixels.
func (s *Scene) Size() (width, height int) {
	return int(math.Round(s.layout.Width)), int(math.Round(s.layout.Height))
}

// Nodes returns node marks in pre-order.
func (s *Scene) Nodes() []*NodeMark { return s.nodes }

// Edges returns edge marks in layout order.
func (s *Scene) Edges() []*EdgeMark { return s.edges }

// Node returns the mark for a node ID.
func (s *Scene) Node(id string) (*NodeMark, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// EdgeTo returns the mark of the edge whose target is id.
func (s *Scene) EdgeTo(id string) (*EdgeMark, bool) {
	m, ok := s.edgeTo[id]
	return m, ok
}

// Animate starts the entrance reveal at now.
func (s *Scene) Animate(now time.Time) {
	for _, m := range s.nodes {
		m.reveal.begin(now, time.Duration(m.Node.Depth)*s.theme.RevealStagger, s.theme.RevealDuration)
	}
	for _, m := range s.edges {
		m.reveal.begin(now, 0, s.theme.LinkFadeDuration)
	}
}

// Tick advances every running transition to now and reports whether any are
// still running.
func (s *Scene) Tick(now time.Time) bool {
	running := false
	for _, m := range s.nodes {
		if m.anim.active {
			attrs, done := m.anim.step(now)
			m.Attrs = attrs
			if done {
				m.state = settled(m.state)
			} else {
				running = true
			}
		}
		if m.reveal.active && !m.reveal.step(now) {
			running = true
		}
	}
	for _, m := range s.edges {
		if m.anim.active {
			attrs, done := m.anim.step(now)
			m.Attrs = attrs
			if !done {
				running = true
			}
		}
		if m.reveal.active && !m.reveal.step(now) {
			running = true
		}
	}
	return running
}

// Settle finishes every running transition.
func (s *Scene) Settle() {
	for _, m := range s.nodes {
		if m.anim.active {
			m.Attrs = m.anim.finish()
			m.state = settled(m.state)
		}
		m.reveal.finish()
	}
	for _, m := range s.edges {
		if m.anim.active {
			m.Attrs = m.anim.finish()
		}
		m.reveal.finish()
	}
}

func settled(st State) State {
	switch st {
	case Entering:
		return Hovered
	case Leaving:
		return Idle
	default:
		return st
	}
}
