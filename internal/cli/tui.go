package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/unixblacksteel/mindmap/pkg/layout"
	"github.com/unixblacksteel/mindmap/pkg/scene"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// frameInterval paces highlight animation in the terminal.
const frameInterval = time.Second / 60

// listTop is the screen row of the first node row, below the title and help.
const listTop = 3

// =============================================================================
// ExplorerModel - hover explorer over a rendered scene
// =============================================================================

// frameMsg advances scene transitions.
type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// ExplorerModel is the bubbletea model that walks a scene's nodes and drives
// its hover highlighting. The cursor and the mouse play the role of the
// pointer.
type ExplorerModel struct {
	Scene  *scene.Scene
	Cursor int // -1 while no node is hovered
	Height int
	Offset int

	nodes     []*scene.NodeMark
	levels    [][]*layout.LayoutNode
	animating bool
	now       func() time.Time
}

// NewExplorerModel creates an explorer with nothing hovered. Init starts the
// entrance animation, so the model begins animating.
func NewExplorerModel(s *scene.Scene) ExplorerModel {
	return ExplorerModel{
		Scene:     s,
		Cursor:    -1,
		Height:    20,
		nodes:     s.Nodes(),
		levels:    s.Layout().Depths(),
		animating: true,
		now:       time.Now,
	}
}

func (m ExplorerModel) Init() tea.Cmd {
	m.Scene.Animate(m.now())
	return nextFrame()
}

func (m ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			return m.hover(max(m.Cursor-1, 0))
		case "down", "j":
			return m.hover(min(m.Cursor+1, len(m.nodes)-1))
		case "left", "h":
			if m.Cursor >= 0 {
				if p := m.nodes[m.Cursor].Node.Parent; p != nil {
					return m.hover(p.Index)
				}
			}
		case "right", "l":
			if m.Cursor >= 0 {
				if kids := m.nodes[m.Cursor].Node.Children; len(kids) > 0 {
					return m.hover(kids[0].Index)
				}
			}
		case "[":
			return m.sibling(-1)
		case "]":
			return m.sibling(1)
		case "esc":
			return m.unhover()
		}
	case tea.MouseMsg:
		return m.mouse(msg)
	case frameMsg:
		if m.Scene.Tick(time.Time(msg)) {
			return m, nextFrame()
		}
		m.animating = false
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

// hover moves the pointer onto node i.
func (m ExplorerModel) hover(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.nodes) {
		return m, nil
	}
	m.Cursor = i
	if i < m.Offset {
		m.Offset = i
	}
	if i >= m.Offset+m.Height {
		m.Offset = i - m.Height + 1
	}
	m.Scene.PointerEnter(m.nodes[i].Node.ID, m.now())
	return m.animate()
}

// sibling moves to the previous or next node at the cursor's depth.
func (m ExplorerModel) sibling(step int) (tea.Model, tea.Cmd) {
	if m.Cursor < 0 {
		return m, nil
	}
	n := m.nodes[m.Cursor].Node
	level := m.levels[n.Depth]
	for i, ln := range level {
		if ln == n {
			j := min(max(i+step, 0), len(level)-1)
			return m.hover(level[j].Index)
		}
	}
	return m, nil
}

// mouse hovers the row under the pointer and scrolls on the wheel. Leaving
// the rows leaves the tree.
func (m ExplorerModel) mouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.Offset = max(m.Offset-1, 0)
		return m, nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.Offset = max(min(m.Offset+1, len(m.nodes)-m.Height), 0)
		return m, nil
	case msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress:
		return m, nil
	}
	row := msg.Y - listTop
	if row < 0 || row >= min(m.Height, len(m.nodes)-m.Offset) {
		if m.Cursor < 0 {
			return m, nil
		}
		return m.unhover()
	}
	if i := m.Offset + row; i != m.Cursor {
		return m.hover(i)
	}
	return m, nil
}

// unhover moves the pointer off the tree.
func (m ExplorerModel) unhover() (tea.Model, tea.Cmd) {
	if id, ok := m.Scene.Hovered(); ok {
		m.Scene.PointerLeave(id, m.now())
	}
	m.Cursor = -1
	return m.animate()
}

func (m ExplorerModel) animate() (tea.Model, tea.Cmd) {
	if m.animating {
		return m, nil
	}
	m.animating = true
	return m, nextFrame()
}

func (m ExplorerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Mind Map Explorer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ←/→ parent/child  [/] same depth  esc leave  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.nodes))
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.row(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status())
	return b.String()
}

// row draws one node: an indented connector in the edge colour, a marker in
// the node stroke colour and the label in its label colour and weight.
func (m ExplorerModel) row(i int) string {
	mark := m.nodes[i]
	n := mark.Node

	var b strings.Builder
	if i == m.Cursor {
		b.WriteString("▸ ")
	} else {
		b.WriteString("  ")
	}
	if n.Depth > 0 {
		b.WriteString(strings.Repeat("   ", n.Depth-1))
		connector := lipgloss.NewStyle()
		if e, ok := m.Scene.EdgeTo(n.ID); ok {
			connector = connector.Foreground(termColor(e.Attrs.Stroke)).Faint(e.Attrs.Opacity < 0.8)
			if e.Reveal() < 1 {
				connector = connector.Faint(true)
			}
		}
		b.WriteString(connector.Render("└─ "))
	}

	marker := "○"
	if mark.State() != scene.Idle {
		marker = "●"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(termColor(mark.Attrs.Stroke)).Render(marker))
	b.WriteString(" ")

	label := lipgloss.NewStyle().
		Foreground(termColor(mark.Attrs.LabelFill)).
		Bold(mark.Attrs.LabelWeight >= 600).
		Faint(mark.Reveal() < 0.5)
	b.WriteString(label.Render(n.Name))
	return b.String()
}

func (m ExplorerModel) status() string {
	id, ok := m.Scene.Hovered()
	if !ok {
		return listDimStyle.Render(fmt.Sprintf("  %d nodes · nothing hovered", len(m.nodes)))
	}
	mark, _ := m.Scene.Node(id)
	n := mark.Node
	return listHeaderStyle.Render("  "+n.Name) + listDimStyle.Render(fmt.Sprintf(
		"  %s · depth %d · (%.0f, %.0f) · %s",
		id, n.Depth, n.X, n.Y, mark.State()))
}

func termColor(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}

// runExplorer opens the explorer full screen and blocks until it is closed.
func runExplorer(s *scene.Scene) error {
	_, err := tea.NewProgram(NewExplorerModel(s), tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
