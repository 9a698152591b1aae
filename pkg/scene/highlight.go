package scene

import "time"

// PointerEnter marks id as the hovered node. A previously hovered node starts
// leaving at the same instant. Unknown IDs are ignored.
func (s *Scene) PointerEnter(id string, now time.Time) bool {
	m, ok := s.byID[id]
	if !ok || s.hovered == id {
		return false
	}
	if s.hovered != "" {
		s.leave(s.hovered, now)
	}
	s.hovered = id

	m.state = Entering
	m.anim.begin(m.Attrs, s.theme.NodeHover, now, s.theme.EnterDuration)
	if e, ok := s.edgeTo[id]; ok {
		e.anim.begin(e.Attrs, s.theme.EdgeHover, now, s.theme.EnterDuration)
	}
	return true
}

// PointerLeave releases id if it is the hovered node. Leave events for a node
// that has already been superseded are ignored; its revert is running.
func (s *Scene) PointerLeave(id string, now time.Time) bool {
	if id == "" || s.hovered != id {
		return false
	}
	s.hovered = ""
	s.leave(id, now)
	return true
}

// Hovered returns the hovered node ID, if any.
func (s *Scene) Hovered() (string, bool) {
	return s.hovered, s.hovered != ""
}

// State returns the highlight state of id. Unknown IDs report Idle.
func (s *Scene) State(id string) State {
	if m, ok := s.byID[id]; ok {
		return m.state
	}
	return Idle
}

func (s *Scene) leave(id string, now time.Time) {
	m := s.byID[id]
	m.state = Leaving
	m.anim.begin(m.Attrs, s.theme.Node, now, s.theme.LeaveDuration)
	if e, ok := s.edgeTo[id]; ok {
		e.anim.begin(e.Attrs, s.theme.Edge, now, s.theme.LeaveDuration)
	}
}
