package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os/exec"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

// RSVG rasterizes with the external rsvg-convert tool.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RSVG struct {
	// Binary overrides the rsvg-convert path.
	Binary string
}

// Rasterize implements Rasterizer.
func (r RSVG) Rasterize(ctx context.Context, svg []byte, w, h int, bg color.Color) (image.Image, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	out, err := r.convert(ctx, svg, "-f", "png", "-w", strconv.Itoa(w), "-h", strconv.Itoa(h))
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterization, err, "decode rsvg-convert output")
	}

	surface := imaging.New(w, h, opaque(bg))
	return imaging.Overlay(surface, img, image.Pt(0, 0), 1.0), nil
}

// convert shells out to rsvg-convert.
func (r RSVG) convert(ctx context.Context, svg []byte, args ...string) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "rsvg-convert"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, errors.New(errors.ErrCodeRasterization,
			"rsvg rasterizer requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterization, fmt.Errorf("%v: %s", err, errBuf.String()), "rsvg-convert")
	}
	return out.Bytes(), nil
}
