package raster

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// textStyle is the resolved presentation of one <text> element. A nil fill
// means the label is not painted.
type textStyle struct {
	fill       color.Color
	fontSize   float64
	fontWeight int
	anchor     string
}

var textProps = []string{"fill", "fill-opacity", "opacity", "font-size", "font-weight", "text-anchor"}

// parseTextStyle merges presentation attributes with the inline style
// property, the latter taking precedence. Unset fill defaults to black as in
// SVG.
func parseTextStyle(attrs map[string]string) textStyle {
	props := map[string]string{}
	for _, k := range textProps {
		if v, ok := attrs[k]; ok {
			props[k] = v
		}
	}
	for _, decl := range strings.Split(attrs["style"], ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		props[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	st := textStyle{fill: color.Black, fontSize: 16, fontWeight: 400, anchor: props["text-anchor"]}
	if v, ok := props["fill"]; ok {
		c, err := oksvg.ParseSVGColor(v)
		if err != nil {
			c = nil
		}
		st.fill = c
	}
	opacity := 1.0
	for _, k := range []string{"opacity", "fill-opacity"} {
		if v, ok := props[k]; ok {
			opacity *= clamp01(num(v))
		}
	}
	if st.fill != nil {
		st.fill = rasterx.ApplyOpacity(st.fill, opacity)
	}
	if v, ok := props["font-size"]; ok && num(v) > 0 {
		st.fontSize = num(v)
	}
	if v, ok := props["font-weight"]; ok {
		st.fontWeight = parseWeight(v)
	}
	return st
}

func parseWeight(v string) int {
	switch strings.TrimSpace(v) {
	case "bold", "bolder":
		return 700
	case "normal", "lighter":
		return 400
	}
	w, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 400
	}
	return w
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
