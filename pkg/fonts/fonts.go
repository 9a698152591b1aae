// Package fonts provides the label faces used by the native rasterizer.
//
// Two families are compiled into the binary, so rasterization never depends
// on fonts installed on the host:
//
//   - the Go fonts (golang.org/x/image/font/gofont), used for every rune they
//     cover;
//   - DejaVu Sans Condensed (ttf/), used for runes the Go fonts lack. It
//     covers Arabic, including the presentation forms the shaper joins
//     letters into.
//
// A [Fontmap] resolves each rune to one of the two faces and plugs straight
// into github.com/go-text/typesetting/shaping, which splits a label into
// runs per face and direction before shaping.
package fonts

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Family is the CSS font stack for SVG labels. The embedded faces come first
// so browsers and the native rasterizer agree on glyphs where they can.
const Family = `Go, 'DejaVu Sans Condensed', 'IBM Plex Sans Arabic', sans-serif`

// BoldWeight is the lowest CSS weight drawn with the bold faces.
const BoldWeight = 600

var (
	//go:embed ttf/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed ttf/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

// weightFonts pairs the primary and fallback font of one weight.
type weightFonts struct {
	primary, fallback *font.Font
}

// Parsed fonts (computed once on first access). Fonts are safe for
// concurrent use; faces are not and are created per Fontmap.
var (
	regular, bold weightFonts
	parseErr      error
	parseOnce     sync.Once
)

func load() error {
	parseOnce.Do(func() {
		for _, f := range []struct {
			dst  **font.Font
			name string
			data []byte
		}{
			{&regular.primary, "Go Regular", goregular.TTF},
			{&regular.fallback, "DejaVu Sans Condensed", dejaVuRegular},
			{&bold.primary, "Go Bold", gobold.TTF},
			{&bold.fallback, "DejaVu Sans Condensed Bold", dejaVuBold},
		} {
			face, err := font.ParseTTF(bytes.NewReader(f.data))
			if err != nil {
				parseErr = fmt.Errorf("parse %s: %w", f.name, err)
				return
			}
			*f.dst = face.Font
		}
	})
	return parseErr
}

// Fontmap resolves runes to the faces of one weight. It implements
// shaping.Fontmap. Faces cache glyph extents, so a Fontmap must not be shared
// between goroutines.
type Fontmap struct {
	primary, fallback *font.Face
}

// New returns a Fontmap for a CSS weight. Weights of BoldWeight and above use
// the bold faces.
func New(weight int) (*Fontmap, error) {
	if err := load(); err != nil {
		return nil, err
	}
	w := regular
	if weight >= BoldWeight {
		w = bold
	}
	return &Fontmap{primary: font.NewFace(w.primary), fallback: font.NewFace(w.fallback)}, nil
}

// ResolveFace returns the Go face when it has a glyph for r and the fallback
// face otherwise. Runes neither face covers stay on the Go face.
func (m *Fontmap) ResolveFace(r rune) *font.Face {
	if _, ok := m.primary.NominalGlyph(r); ok {
		return m.primary
	}
	if _, ok := m.fallback.NominalGlyph(r); ok {
		return m.fallback
	}
	return m.primary
}

// Covers reports whether either face has a glyph for r.
func (m *Fontmap) Covers(r rune) bool {
	_, ok := m.ResolveFace(r).NominalGlyph(r)
	return ok
}

// Primary returns the Go face.
func (m *Fontmap) Primary() *font.Face { return m.primary }
