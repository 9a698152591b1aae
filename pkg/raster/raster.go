package raster

import (
	"context"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

// MaxPixels bounds surface allocation (64 megapixels).
const MaxPixels = 64 << 20

// Backend names accepted by New.
const (
	KindNative = "native"
	KindRSVG   = "rsvg"
)

// Rasterizer draws an SVG document onto a w×h surface filled with bg.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg []byte, w, h int, bg color.Color) (image.Image, error)
}

// New returns the rasterizer for kind. An empty kind selects Native.
func New(kind string) (Rasterizer, error) {
	switch kind {
	case "", KindNative:
		return Native{}, nil
	case KindRSVG:
		return RSVG{}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown rasterizer %q (want %s or %s)", kind, KindNative, KindRSVG)
	}
}

// NewSurface allocates a w×h drawing surface and fills it with bg. The
// background is forced opaque.
func NewSurface(w, h int, bg color.Color) (*gg.Context, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(opaque(bg))
	dc.Clear()
	return dc, nil
}

func checkSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return errors.New(errors.ErrCodeSurfaceUnavailable, "invalid surface size %dx%d", w, h)
	}
	if int64(w)*int64(h) > MaxPixels {
		return errors.New(errors.ErrCodeSurfaceUnavailable, "surface %dx%d exceeds %d pixels", w, h, MaxPixels)
	}
	return nil
}

func opaque(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{A: 0xff}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return n
}
