package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unixblacksteel/mindmap/pkg/layout"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/scene"
)

func newTestExplorer(t *testing.T) (ExplorerModel, *scene.Scene, time.Time) {
	t.Helper()
	tree := mindmap.New("Root",
		mindmap.New("Left", mindmap.New("Leaf")),
		mindmap.New("Right"),
	)
	l, err := layout.Compute(tree, layout.Options{Width: 800, Height: 600})
	if err != nil {
		t.Fatal(err)
	}
	s := scene.New(l, scene.DefaultTheme())
	t0 := time.Unix(1700000000, 0)
	m := NewExplorerModel(s)
	m.now = func() time.Time { return t0 }
	return m, s, t0
}

func press(t *testing.T, m ExplorerModel, k tea.KeyType) ExplorerModel {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(ExplorerModel)
}

func TestExplorerNavigationDrivesHover(t *testing.T) {
	m, s, _ := newTestExplorer(t)

	if _, ok := s.Hovered(); ok {
		t.Fatal("nothing should be hovered initially")
	}

	steps := []struct {
		key  tea.KeyType
		want string
	}{
		{tea.KeyDown, "n0"},  // root
		{tea.KeyRight, "n1"}, // Left
		{tea.KeyRight, "n2"}, // Leaf
		{tea.KeyRight, "n2"}, // leaves have no children
		{tea.KeyLeft, "n1"},
		{tea.KeyDown, "n2"},
		{tea.KeyDown, "n3"}, // Right
		{tea.KeyDown, "n3"}, // clamped at the end
		{tea.KeyUp, "n2"},
	}
	for i, step := range steps {
		m = press(t, m, step.key)
		got, ok := s.Hovered()
		if !ok || got != step.want {
			t.Fatalf("step %d: hovered = %q, want %q", i, got, step.want)
		}
	}

	m = press(t, m, tea.KeyEsc)
	if _, ok := s.Hovered(); ok {
		t.Error("esc should leave the tree")
	}
	if m.Cursor != -1 {
		t.Errorf("cursor = %d after esc", m.Cursor)
	}
}

func TestExplorerFramesSettleTransitions(t *testing.T) {
	m, s, t0 := newTestExplorer(t)

	m = press(t, m, tea.KeyDown)
	if st := s.State("n0"); st != scene.Entering {
		t.Fatalf("state after enter = %v, want Entering", st)
	}

	next, cmd := m.Update(frameMsg(t0.Add(time.Minute)))
	m = next.(ExplorerModel)
	if st := s.State("n0"); st != scene.Hovered {
		t.Errorf("state after settling = %v, want Hovered", st)
	}
	if cmd != nil {
		t.Error("no further frames should be scheduled once transitions finish")
	}
	if m.animating {
		t.Error("animating should be cleared")
	}
}

func TestExplorerView(t *testing.T) {
	m, _, _ := newTestExplorer(t)
	m = press(t, m, tea.KeyDown)

	view := m.View()
	for _, want := range []string{"Root", "Left", "Leaf", "Right", "n0", "depth 0"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestExplorerQuit(t *testing.T) {
	m, _, _ := newTestExplorer(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestExplorerStartsAnimating(t *testing.T) {
	m, s, t0 := newTestExplorer(t)
	if !m.animating {
		t.Fatal("new explorer is not animating")
	}

	// The entrance frame chain is already running, so a key must not start
	// another one.
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(ExplorerModel)
	if cmd != nil {
		t.Error("key during the entrance scheduled a second frame chain")
	}
	if got, _ := s.Hovered(); got != "n0" {
		t.Errorf("hovered = %q, want n0", got)
	}

	next, _ = m.Update(frameMsg(t0.Add(time.Minute)))
	m = next.(ExplorerModel)
	if m.animating {
		t.Fatal("animating after transitions settled")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown}); cmd == nil {
		t.Error("key after settling did not schedule frames")
	}
}

func TestExplorerSameDepth(t *testing.T) {
	tests := []struct {
		name  string
		start tea.KeyType
		key   string
		want  string
	}{
		{"next sibling", tea.KeyRight, "]", "n3"},    // Left -> Right
		{"previous clamps", tea.KeyRight, "[", "n1"}, // Left stays
		{"root alone", tea.KeyEsc, "]", "n0"},        // root has no peers
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, _ := newTestExplorer(t)
			m = press(t, m, tea.KeyDown)
			if tt.start != tea.KeyEsc {
				m = press(t, m, tt.start)
			}
			next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)})
			m = next.(ExplorerModel)
			if got, _ := s.Hovered(); got != tt.want {
				t.Errorf("hovered = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExplorerMouse(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.MouseMsg
		want string // "" when nothing is hovered
	}{
		{"first row", tea.MouseMsg{Y: listTop, Action: tea.MouseActionMotion}, "n0"},
		{"third row", tea.MouseMsg{Y: listTop + 2, Action: tea.MouseActionMotion}, "n2"},
		{"click", tea.MouseMsg{Y: listTop + 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, "n3"},
		{"header", tea.MouseMsg{Y: 0, Action: tea.MouseActionMotion}, ""},
		{"below rows", tea.MouseMsg{Y: listTop + 10, Action: tea.MouseActionMotion}, ""},
		{"release", tea.MouseMsg{Y: listTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, _ := newTestExplorer(t)
			next, _ := m.Update(tt.msg)
			m = next.(ExplorerModel)
			got, _ := s.Hovered()
			if got != tt.want {
				t.Errorf("hovered = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExplorerMouseLeavesTree(t *testing.T) {
	m, s, _ := newTestExplorer(t)
	next, _ := m.Update(tea.MouseMsg{Y: listTop + 1, Action: tea.MouseActionMotion})
	m = next.(ExplorerModel)
	if got, _ := s.Hovered(); got != "n1" {
		t.Fatalf("hovered = %q, want n1", got)
	}
	next, _ = m.Update(tea.MouseMsg{Y: 1, Action: tea.MouseActionMotion})
	m = next.(ExplorerModel)
	if _, ok := s.Hovered(); ok || m.Cursor != -1 {
		t.Errorf("pointer above the rows left hovered = %v, cursor = %d", ok, m.Cursor)
	}
}

func TestExplorerMouseWheel(t *testing.T) {
	m, _, _ := newTestExplorer(t)
	m.Height = 2
	next, _ := m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m = next.(ExplorerModel)
	next, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m = next.(ExplorerModel)
	next, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m = next.(ExplorerModel)
	if m.Offset != 2 {
		t.Errorf("offset = %d, want 2 (clamped to the last page)", m.Offset)
	}
	next, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	m = next.(ExplorerModel)
	if m.Offset != 1 {
		t.Errorf("offset = %d, want 1", m.Offset)
	}
}
