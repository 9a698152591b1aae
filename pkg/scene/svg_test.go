package scene

import (
	"strings"
	"testing"
	"time"

	"github.com/unixblacksteel/mindmap/pkg/fonts"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

func TestSerializeIsIdle(t *testing.T) {
	s := newScene(t, siblings())
	s.PointerEnter("n2", t0)
	s.Settle()

	out := string(s.Serialize())
	if strings.Contains(out, `r="9"`) {
		t.Error("Serialize() contains hover radius")
	}
	if got := strings.Count(out, `r="6"`); got != 4 {
		t.Errorf("idle circles = %d, want 4", got)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "<style") {
		t.Error("Serialize() embeds interaction")
	}
	if strings.Contains(out, "stroke-width:2.5") {
		t.Error("Serialize() contains hovered edge styling")
	}

	// the live scene keeps its hover state
	if id, _ := s.Hovered(); id != "n2" {
		t.Errorf("Hovered() = %q after Serialize, want n2", id)
	}
}

func TestSVGCurrentState(t *testing.T) {
	s := newScene(t, siblings())
	s.PointerEnter("n2", t0)
	s.Settle()

	out := string(s.SVG())
	if got := strings.Count(out, `r="9"`); got != 1 {
		t.Errorf("hover circles = %d, want 1", got)
	}
	if !strings.Contains(out, "font-weight:700") {
		t.Error("hovered label not bold")
	}
	if !strings.Contains(out, "stroke:#ffffff;stroke-width:2.5;stroke-opacity:1") {
		t.Error("hovered edge not highlighted")
	}
}

func TestSVGStructure(t *testing.T) {
	s := newScene(t, mindmap.New("Unix <core>", mindmap.New("العمليات")))
	out := string(s.SVG(WithBackground()))

	checks := []string{
		`width="800"`,
		`height="600"`,
		`translate(100,50)`,
		`id="n0"`,
		`id="link-n1"`,
		`data-target="n1"`,
		`text-anchor="end"`,
		`text-anchor="start"`,
		`dy="0.31em"`,
		"Unix &lt;core&gt;",
		"العمليات",
		"fill:#121214",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Error("SVG not closed")
	}
}

func TestSVGInteraction(t *testing.T) {
	s := newScene(t, mindmap.New("root", mindmap.New("a", mindmap.New("b"))))
	out := string(s.SVG(WithInteraction()))

	for _, want := range []string{
		"<script",
		"mouseenter",
		"mouseleave",
		".node.hover circle",
		"r: 9px !important",
		"transition-duration: 200ms",
		`.node[data-depth="2"] circle`,
		"animation-delay: 400ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("interactive SVG missing %q", want)
		}
	}
}

func TestSVGDuringEntrance(t *testing.T) {
	s := newScene(t, siblings())
	s.Animate(t0)
	out := string(s.SVG())
	if got := strings.Count(out, `r="0"`); got != 4 {
		t.Errorf("hidden circles = %d, want 4", got)
	}
	if !strings.Contains(out, "stroke-opacity:0.4") {
		t.Error("edges not at initial opacity")
	}
	s.Tick(t0.Add(5 * time.Second))
	if strings.Contains(string(s.SVG()), `r="0"`) {
		t.Error("circles still hidden after entrance")
	}
}

func TestIdleStyleOption(t *testing.T) {
	s := newScene(t, siblings())
	s.PointerEnter("n2", t0)
	s.Settle()

	out := string(s.SVG(IdleStyle(), WithBackground()))
	if strings.Contains(out, `r="9"`) {
		t.Error("IdleStyle() output contains hover radius")
	}
	if !strings.Contains(out, "fill:#121214") {
		t.Error("background not painted with theme color")
	}
}

func TestDefaultThemePalette(t *testing.T) {
	th := DefaultTheme()
	tests := []struct {
		name, got, want string
	}{
		{"background", th.Background.Hex(), "#121214"},
		{"node fill", th.Node.Fill.Hex(), "#0a0a0b"},
		{"node stroke", th.Node.Stroke.Hex(), "#e2e8f0"},
		{"hover fill", th.NodeHover.Fill.Hex(), "#ef4444"},
		{"edge", th.Edge.Stroke.Hex(), "#ef4444"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}

func TestLabelsUseEmbeddedFontStack(t *testing.T) {
	out := string(newScene(t, siblings()).Serialize())
	if !strings.Contains(out, "font-family:"+fonts.Family) {
		t.Errorf("labels do not name the embedded font stack %q", fonts.Family)
	}
}

func TestMustHexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mustHex did not panic on a bad literal")
		}
	}()
	mustHex("not-a-color")
}
