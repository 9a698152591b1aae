package scene

import (
	"fmt"
	"strings"
	"time"
)

const interactionJS = `
    let hovered = null;
    function mark(id, on) {
      const node = document.getElementById(id);
      if (node) node.classList.toggle('hover', on);
      document.querySelectorAll('.link[data-target="' + id + '"]').forEach(l => l.classList.toggle('hover', on));
    }
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => {
        if (hovered && hovered !== el.id) mark(hovered, false);
        hovered = el.id;
        mark(el.id, true);
      });
      el.addEventListener('mouseleave', () => {
        if (hovered !== el.id) return;
        mark(el.id, false);
        hovered = null;
      });
    });`

// interactionCSS mirrors the highlight controller in the browser. Hover rules
// are !important because idle styling is inline.
func interactionCSS(t Theme, maxDepth int) string {
	enter, leave := ms(t.EnterDuration), ms(t.LeaveDuration)
	reveal, fade := ms(t.RevealDuration), ms(t.LinkFadeDuration)

	var b strings.Builder
	fmt.Fprintf(&b, `
    .node { cursor: pointer; }
    .node circle { transition: r %[1]s, fill %[1]s, stroke %[1]s, stroke-width %[1]s; animation: mm-grow %[3]s ease-in-out both; }
    .node text { transition: fill %[1]s, font-weight %[1]s; animation: mm-fade %[3]s ease-in-out both; }
    .link { transition: stroke %[1]s, stroke-width %[1]s, stroke-opacity %[1]s; animation: mm-link %[4]s ease-in-out both; }
    .node.hover circle { r: %[5]spx !important; fill: %[6]s !important; stroke: %[7]s !important; stroke-width: %[8]s !important; transition-duration: %[2]s; }
    .node.hover text { fill: %[9]s !important; font-weight: %[10]d !important; transition-duration: %[2]s; }
    .link.hover { stroke: %[11]s !important; stroke-width: %[12]s !important; stroke-opacity: %[13]s !important; transition-duration: %[2]s; }
    @keyframes mm-grow { from { r: 0; } }
    @keyframes mm-fade { from { opacity: 0; } }
    @keyframes mm-link { from { stroke-opacity: %[14]s; } }`,
		leave, enter, reveal, fade,
		num(t.NodeHover.Radius), t.NodeHover.Fill.Hex(), t.NodeHover.Stroke.Hex(), num(t.NodeHover.StrokeWidth),
		t.NodeHover.LabelFill.Hex(), int(t.NodeHover.LabelWeight),
		t.EdgeHover.Stroke.Hex(), num(t.EdgeHover.Width), num(t.EdgeHover.Opacity),
		num(t.LinkInitialOpacity),
	)
	for d := 1; d <= maxDepth; d++ {
		fmt.Fprintf(&b, "\n    .node[data-depth=\"%d\"] circle, .node[data-depth=\"%d\"] text { animation-delay: %s; }",
			d, d, ms(time.Duration(d)*t.RevealStagger))
	}
	b.WriteString("\n")
	return b.String()
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
