package raster

import (
	"bytes"
	"context"
	"encoding/xml"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

// Native rasterizes scene SVG in-process. Geometry goes through oksvg and
// rasterx; labels are shaped and drawn by a labeler.
type Native struct{}

// Rasterize implements Rasterizer.
func (Native) Rasterize(ctx context.Context, svg []byte, w, h int, bg color.Color) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(svg)) == 0 {
		return nil, errors.New(errors.ErrCodeRasterization, "empty scene")
	}
	labels, geometry, err := readLabels(ctx, svg, w, h)
	if err != nil {
		return nil, err
	}

	dc, err := NewSurface(w, h, bg)
	if err != nil {
		return nil, err
	}
	img := dc.Image().(*image.RGBA)

	icon, err := oksvg.ReadIconStream(bytes.NewReader(geometry), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterization, err, "decode scene geometry")
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.W, icon.ViewBox.H = float64(w), float64(h)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lb := newLabeler()
	for _, l := range labels {
		if err := lb.draw(img, l); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// label is one <text> element resolved to surface coordinates.
type label struct {
	text   string
	x, y   float64 // anchor point on the baseline
	anchor float64 // 0 start, 0.5 middle, 1 end
	size   float64 // pixels
	weight int
	fill   color.Color
}

// transform is the translate-and-scale state of the group stack.
type transform struct {
	tx, ty, sx, sy float64
}

func (t transform) apply(x, y float64) (float64, float64) {
	return t.tx + x*t.sx, t.ty + y*t.sy
}

// readLabels walks the document for <text> elements and checks that it is
// well formed with an <svg> root. It also returns the document with style and
// script elements cut out, for the geometry pass.
func readLabels(ctx context.Context, svg []byte, w, h int) ([]label, []byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(svg))
	var (
		labels []label
		stack  []transform
		root   bool
		cuts   [][2]int64
	)
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeRasterization, err, "decode scene")
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			a := attrs(el.Attr)
			if !root {
				if el.Name.Local != "svg" {
					return nil, nil, errors.New(errors.ErrCodeRasterization, "scene root is <%s>, want <svg>", el.Name.Local)
				}
				root = true
				stack = append(stack, surfaceTransform(a, w, h))
				continue
			}
			cur := stack[len(stack)-1]
			switch el.Name.Local {
			case "g":
				x, y, err := parseTranslate(a["transform"])
				if err != nil {
					return nil, nil, err
				}
				cur.tx, cur.ty = cur.apply(x, y)
				stack = append(stack, cur)
			case "text":
				body, err := textContent(dec)
				if err != nil {
					return nil, nil, err
				}
				if l, ok := newLabel(a, body, cur); ok {
					labels = append(labels, l)
				}
			case "style", "script":
				if err := dec.Skip(); err != nil {
					return nil, nil, errors.Wrap(errors.ErrCodeRasterization, err, "skip <%s>", el.Name.Local)
				}
				cuts = append(cuts, [2]int64{start, dec.InputOffset()})
			}
		case xml.EndElement:
			if el.Name.Local == "g" && len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if !root {
		return nil, nil, errors.New(errors.ErrCodeRasterization, "scene has no <svg> root")
	}
	if len(cuts) == 0 {
		return labels, svg, nil
	}
	geometry := make([]byte, 0, len(svg))
	var pos int64
	for _, c := range cuts {
		geometry = append(geometry, svg[pos:c[0]]...)
		pos = c[1]
	}
	return labels, append(geometry, svg[pos:]...), nil
}

// surfaceTransform maps the document's declared size onto the surface.
func surfaceTransform(a map[string]string, w, h int) transform {
	t := transform{sx: 1, sy: 1}
	sw, errW := strconv.ParseFloat(strings.TrimSuffix(a["width"], "px"), 64)
	sh, errH := strconv.ParseFloat(strings.TrimSuffix(a["height"], "px"), 64)
	if errW == nil && errH == nil && sw > 0 && sh > 0 {
		t.sx, t.sy = float64(w)/sw, float64(h)/sh
	}
	return t
}

func textContent(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for depth := 1; depth > 0; {
		tok, err := dec.Token()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeRasterization, err, "decode <text>")
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func newLabel(a map[string]string, body string, t transform) (label, bool) {
	st := parseTextStyle(a)
	if body == "" || st.fill == nil {
		return label{}, false
	}
	x := num(a["x"])
	y := num(a["y"]) + length(a["dy"], st.fontSize)
	l := label{text: body, weight: st.fontWeight, fill: st.fill, size: st.fontSize * t.sy}
	l.x, l.y = t.apply(x, y)
	switch st.anchor {
	case "middle":
		l.anchor = 0.5
	case "end":
		l.anchor = 1
	}
	return l, true
}

func attrs(list []xml.Attr) map[string]string {
	m := make(map[string]string, len(list))
	for _, a := range list {
		m[a.Name.Local] = a.Value
	}
	return m
}

func num(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	return v
}

// length resolves an SVG length, with em relative to fontSize.
func length(s string, fontSize float64) float64 {
	s = strings.TrimSpace(s)
	if v, ok := strings.CutSuffix(s, "em"); ok {
		return num(v) * fontSize
	}
	return num(s)
}

// parseTranslate reads a group transform. Labels only follow translations;
// an empty transform is the identity.
func parseTranslate(s string) (float64, float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	inner, ok := strings.CutPrefix(s, "translate(")
	if !ok || !strings.HasSuffix(inner, ")") {
		return 0, 0, errors.New(errors.ErrCodeRasterization, "unsupported transform %q", s)
	}
	parts := strings.FieldsFunc(strings.TrimSuffix(inner, ")"), func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(parts) == 0 || len(parts) > 2 {
		return 0, 0, errors.New(errors.ErrCodeRasterization, "malformed transform %q", s)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeRasterization, err, "transform %q", s)
	}
	var y float64
	if len(parts) == 2 {
		if y, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, 0, errors.Wrap(errors.ErrCodeRasterization, err, "transform %q", s)
		}
	}
	return x, y, nil
}
