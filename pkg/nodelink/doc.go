// Package nodelink renders a laid-out mind map as a Graphviz node-link diagram.
//
// # Overview
//
// The main renderer in [github.com/unixblacksteel/mindmap/pkg/scene] places
// nodes itself. This package hands the same tree to Graphviz instead, which is
// useful for very wide maps and for feeding the DOT source to other tools.
//
// # Usage
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The generated DOT uses a left-to-right layout (rankdir=LR) so depth runs
// along the same axis as the scene, and takes its colours from the scene
// theme: dark rounded boxes with light labels joined by red connectors.
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process. No dot binary is needed.
package nodelink
