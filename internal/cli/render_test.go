package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unixblacksteel/mindmap/pkg/mindmap"
	"github.com/unixblacksteel/mindmap/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " PNG , json ", []string{"png", "json"}},
		{"empty items dropped", "svg,,dot", []string{"svg", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		base, format, want string
	}{
		{"out/map", "svg", "out/map.svg"},
		{"out/map", "png", "out/map.png"},
		{"out/map.png", "png", "out/map.png"},
		{"out/map.png", "pdf", "out/map.png.pdf"},
		{"map", "nodelink", "map.nodelink.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.base+"/"+tt.format, func(t *testing.T) {
			if got := outputPath(tt.base, tt.format); got != tt.want {
				t.Errorf("outputPath(%q, %q) = %q, want %q", tt.base, tt.format, got, tt.want)
			}
		})
	}
}

func TestOutputBase(t *testing.T) {
	if got := outputBase("", "maps/topic.yaml"); got != "maps/topic" {
		t.Errorf("outputBase from input = %q", got)
	}
	if got := outputBase("custom", "maps/topic.yaml"); got != "custom" {
		t.Errorf("outputBase explicit = %q", got)
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "map")
	artifacts := map[string][]byte{
		"svg":  []byte("<svg/>"),
		"json": []byte("{}"),
	}

	files, err := writeArtifacts(artifacts, []string{"json", "svg", "json", "png"}, base)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("wrote %d files, want 2", len(files))
	}
	if files[0].path != base+".json" || files[1].path != base+".svg" {
		t.Errorf("order = %s, %s", files[0].path, files[1].path)
	}
	data, err := os.ReadFile(base + ".svg")
	if err != nil || string(data) != "<svg/>" {
		t.Errorf("svg = %q, %v", data, err)
	}
	if files[0].size != 2 {
		t.Errorf("json size = %d", files[0].size)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Machine Learning", "machine-learning"},
		{"  C++ & Go!  ", "c-go"},
		{"الذكاء الاصطناعي", "الذكاء-الاصطناعي"},
		{"???", "topic"},
		{strings.Repeat("a", 60), strings.Repeat("a", 48)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := slug(tt.in); got != tt.want {
				t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteTree(t *testing.T) {
	tree := mindmap.New("Root", mindmap.New("Child"))
	dir := t.TempDir()

	for _, name := range []string{"tree.json", "tree.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			n, err := writeTree(path, tree)
			if err != nil {
				t.Fatal(err)
			}
			info, err := os.Stat(path)
			if err != nil || int(info.Size()) != n {
				t.Fatalf("size = %d, reported %d (%v)", info.Size(), n, err)
			}
			back, err := mindmap.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if mindmap.Count(back) != 2 || back.Children[0].Name != "Child" {
				t.Errorf("round trip lost nodes: %+v", back)
			}
		})
	}
}

func TestPipelineOptionsFromFlags(t *testing.T) {
	cfgPath, _ := testConfig(t)
	c := New(io.Discard, LogInfo)
	c.configPath = cfgPath

	opts, err := c.pipelineOptions(&renderOpts{formats: "png,svg", width: 1024, interactive: true})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Width != 1024 || opts.Height != pipeline.DefaultHeight {
		t.Errorf("size = %vx%v", opts.Width, opts.Height)
	}
	if !opts.Interactive || len(opts.Formats) != 2 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Theme == nil || opts.Theme.Background.Hex() != "#121214" {
		t.Errorf("theme background not taken from config")
	}

	if _, err := c.pipelineOptions(&renderOpts{formats: "gif"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestRenderCommand(t *testing.T) {
	cfgPath, _ := testConfig(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "topic.json")
	doc := `{"name":"Go","children":[{"name":"Types","children":[{"name":"Structs"}]},{"name":"Concurrency"}]}`
	if err := os.WriteFile(input, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "render", input, "-f", "svg,json,dot"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	for _, ext := range []string{".svg", ".json", ".dot"} {
		if _, err := os.Stat(filepath.Join(dir, "topic"+ext)); err != nil {
			t.Errorf("missing output %s: %v", ext, err)
		}
	}
}

func TestRenderCommandInvalidTree(t *testing.T) {
	cfgPath, _ := testConfig(t)
	input := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(input, []byte(`{"name":""}`), 0o644); err != nil {
		t.Fatal(err)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "render", input})
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil {
		t.Error("expected an error for an unnamed root")
	}
}
