package cli

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/unixblacksteel/mindmap/pkg/chat"
	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/export"
	"github.com/unixblacksteel/mindmap/pkg/genai"
	"github.com/unixblacksteel/mindmap/pkg/layout"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/raster"
	"github.com/unixblacksteel/mindmap/pkg/scene"
)

// stubGenerator answers every mode, optionally blocking until released.
type stubGenerator struct {
	entered chan struct{}
	release chan struct{}
}

func (g *stubGenerator) wait() {
	if g.entered != nil {
		close(g.entered)
		<-g.release
	}
}

func (g *stubGenerator) GenerateTextResponse(context.Context, []genai.Turn, string, string, *genai.Image) (string, error) {
	g.wait()
	return "reply", nil
}

func (g *stubGenerator) GenerateImage(context.Context, string) (*genai.Image, error) {
	g.wait()
	return &genai.Image{MIMEType: "image/png", Data: []byte{1}}, nil
}

func (g *stubGenerator) GenerateMindMapData(_ context.Context, topic string) (*mindmap.Node, error) {
	g.wait()
	return mindmap.New(topic, mindmap.New("a")), nil
}

func (g *stubGenerator) TokensUsed() int64 { return 0 }

// blockingRasterizer holds an export open until released.
type blockingRasterizer struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRasterizer) Rasterize(_ context.Context, _ []byte, w, h int, bg color.Color) (image.Image, error) {
	close(b.entered)
	<-b.release
	dc, err := raster.NewSurface(w, h, bg)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func newTestChatModel(t *testing.T, gen *stubGenerator, exp *export.Exporter) *chatModel {
	t.Helper()
	if exp == nil {
		exp = export.New(export.WithSink(export.DirSink{Dir: t.TempDir()}))
	}
	return &chatModel{
		ctx:      context.Background(),
		session:  chat.NewSession(gen),
		exporter: exp,
		modes:    chat.Modes(),
		input:    textinput.New(),
		saved:    map[string]string{},
	}
}

func withMindMap(t *testing.T, m *chatModel) {
	t.Helper()
	if _, err := m.session.Send(context.Background(), chat.ModeMindMap, "Unix", nil); err != nil {
		t.Fatal(err)
	}
}

func TestChatExportStartsOnce(t *testing.T) {
	m := newTestChatModel(t, &stubGenerator{}, nil)
	if cmd := m.command([]string{"/export"}); cmd != nil || m.status != "no mind map to export yet" {
		t.Errorf("export without a mind map: cmd = %v, status = %q", cmd != nil, m.status)
	}

	withMindMap(t, m)
	if cmd := m.command([]string{"/export", "pdf"}); cmd == nil {
		t.Fatal("first /export returned no command")
	}
	if !m.exporting || m.status != "exporting pdf..." {
		t.Errorf("after first /export: exporting = %v, status = %q", m.exporting, m.status)
	}
}

func TestChatExportWhileBusyIsIgnored(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, m *chatModel) (done func())
	}{
		{
			name: "pending command",
			setup: func(t *testing.T, m *chatModel) func() {
				if m.command([]string{"/export"}) == nil {
					t.Fatal("first /export returned no command")
				}
				return func() {}
			},
		},
		{
			name: "exporter running",
			setup: func(t *testing.T, m *chatModel) func() {
				r := &blockingRasterizer{entered: make(chan struct{}), release: make(chan struct{})}
				export.WithRasterizer(r)(m.exporter)
				l, err := layout.Compute(mindmap.New("Unix", mindmap.New("a")), layout.Options{Width: 400, Height: 300})
				if err != nil {
					t.Fatal(err)
				}
				finished := make(chan struct{})
				go func() {
					defer close(finished)
					_, _ = m.exporter.Export(context.Background(), scene.New(l, scene.DefaultTheme()), export.FormatPNG)
				}()
				<-r.entered
				return func() {
					close(r.release)
					<-finished
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestChatModel(t, &stubGenerator{}, nil)
			withMindMap(t, m)
			done := tt.setup(t, m)
			defer done()

			m.status = "exporting png..."
			if cmd := m.command([]string{"/export", "pdf"}); cmd != nil {
				t.Error("second /export returned a command")
			}
			if m.status != "exporting png..." {
				t.Errorf("status = %q, want it unchanged", m.status)
			}
		})
	}
}

func TestChatExportResult(t *testing.T) {
	tests := []struct {
		name string
		msg  exportMsg
		want string
	}{
		{"saved", exportMsg{art: &export.Artifact{Location: "/tmp/a.png"}}, "saved /tmp/a.png"},
		{"failed", exportMsg{err: errors.New(errors.ErrCodeRasterization, "boom")}, "export failed: "},
		{"in progress", exportMsg{err: errors.New(errors.ErrCodeExportInProgress, "busy")}, "exporting png..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestChatModel(t, &stubGenerator{}, nil)
			m.exporting = true
			m.status = "exporting png..."
			m.Update(tt.msg)
			if m.exporting {
				t.Error("exporting still set after result")
			}
			if len(m.status) < len(tt.want) || m.status[:len(tt.want)] != tt.want {
				t.Errorf("status = %q, want prefix %q", m.status, tt.want)
			}
		})
	}
}

func TestChatSubmitWhileSessionBusy(t *testing.T) {
	gen := &stubGenerator{entered: make(chan struct{}), release: make(chan struct{})}
	m := newTestChatModel(t, gen, nil)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_, _ = m.session.Send(context.Background(), chat.ModeStudy, "first", nil)
	}()
	<-gen.entered
	defer func() {
		close(gen.release)
		<-finished
	}()

	m.input.SetValue("second")
	if cmd := m.submit(); cmd != nil {
		t.Error("submit while the session is busy returned a command")
	}
	if m.status != "a request is already in progress" {
		t.Errorf("status = %q", m.status)
	}
	if m.input.Value() != "second" {
		t.Error("input cleared for a rejected prompt")
	}

	if m.command([]string{"/reset"}); m.status != "wait for the current reply" {
		t.Errorf("/reset status = %q", m.status)
	}
}
