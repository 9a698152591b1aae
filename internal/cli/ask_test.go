package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/genai"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestReadAttachment(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "a.png")
	if err := os.WriteFile(png, pngMagic, 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := readAttachment(png)
	if err != nil {
		t.Fatal(err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("MIME = %q", img.MIMEType)
	}

	txt := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(txt, []byte("just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readAttachment(txt); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("text attachment error = %v, want INVALID_FORMAT", err)
	}

	if _, err := readAttachment(filepath.Join(dir, "missing.png")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing attachment error = %v, want INVALID_INPUT", err)
	}
}

func TestImageFileName(t *testing.T) {
	tests := []struct {
		mime, want string
	}{
		{"image/png", "unix-image-42.png"},
		{"image/jpeg", "unix-image-42.jpg"},
		{"application/x-unknown-thing", "unix-image-42.png"},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := imageFileName(&genai.Image{MIMEType: tt.mime}, 42); got != tt.want {
				t.Errorf("imageFileName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutline(t *testing.T) {
	tree := mindmap.New("Root", mindmap.New("A", mindmap.New("A1")), mindmap.New("B"))
	lines := strings.Split(strings.TrimRight(outline(tree), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("outline has %d lines:\n%s", len(lines), outline(tree))
	}
	if !strings.Contains(lines[0], "Root") || lines[2] != "    • A1" || lines[3] != "  • B" {
		t.Errorf("outline = %q", lines)
	}
}
