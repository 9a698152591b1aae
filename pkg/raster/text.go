package raster

import (
	"image/draw"
	"math"

	"github.com/go-text/render"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/fonts"
)

// labeler shapes and draws labels. It holds per-face caches and belongs to
// one Rasterize call.
type labeler struct {
	seg     shaping.Segmenter
	shaper  shaping.HarfbuzzShaper
	fontmap map[bool]*fonts.Fontmap // keyed by bold
}

func newLabeler() *labeler {
	return &labeler{fontmap: map[bool]*fonts.Fontmap{}}
}

func (lb *labeler) faces(weight int) (*fonts.Fontmap, error) {
	bold := weight >= fonts.BoldWeight
	if fm, ok := lb.fontmap[bold]; ok {
		return fm, nil
	}
	fm, err := fonts.New(weight)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterization, err, "load label fonts")
	}
	lb.fontmap[bold] = fm
	return fm, nil
}

// shape splits text into runs by direction, script and face and shapes each
// run. Runs come back in drawing order, left to right, along with the total
// advance.
func (lb *labeler) shape(text string, size float64, weight int) ([]shaping.Output, fixed.Int26_6, error) {
	fm, err := lb.faces(weight)
	if err != nil {
		return nil, 0, err
	}
	runes := []rune(text)
	in := shaping.Input{
		Text:      runes,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      fm.Primary(),
		Size:      fixed.I(int(size)),
	}
	runs := lb.seg.Split(in, fm)

	line := make([]shaping.Output, len(runs))
	var advance fixed.Int26_6
	for i, run := range runs {
		line[i] = lb.shaper.Shape(run)
		advance += line[i].Advance
	}
	// A paragraph that opens right-to-left reads from the right edge.
	if len(line) > 1 && line[0].Direction.Progression() == di.TowardTopLeft {
		for i, j := 0, len(line)-1; i < j; i, j = i+1, j-1 {
			line[i], line[j] = line[j], line[i]
		}
	}
	return line, advance, nil
}

func (lb *labeler) draw(img draw.Image, l label) error {
	size := math.Max(1, math.Round(l.size))
	line, advance, err := lb.shape(l.text, size, l.weight)
	if err != nil {
		return err
	}
	width := float64(advance) / 64

	r := render.Renderer{FontSize: float32(size), PixScale: 1, Color: l.fill}
	x := int(math.Round(l.x - l.anchor*width))
	y := int(math.Round(l.y))
	for _, run := range line {
		x = r.DrawShapedRunAt(run, img, x, y)
	}
	return nil
}
