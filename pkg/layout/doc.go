// Package layout computes node positions for horizontal mind-map trees.
//
// # Overview
//
// [Compute] takes a validated [mindmap.Node] tree and a canvas size and
// returns a [Layout]: one [LayoutNode] per tree node and one [Edge] per
// parent-child pair. The result is deterministic and built in a single pass
// over the tree, so re-laying out a large map is cheap. Every call builds a
// fresh Layout; nothing is shared with earlier results.
//
// # Geometry
//
// The root sits on the left and depth grows to the right:
//
//   - X (the depth axis) is depth * usableWidth / maxDepth. A root-only tree
//     puts the root at X = 0.
//   - Y is assigned by leaf counting. Leaves take evenly spaced slots across
//     the usable height, in tree order; an internal node sits at the midpoint
//     of its first and last descendant leaf.
//
// Leaf slots never repeat, and every node's Y falls inside the span of its own
// leaves, so two distinct nodes at the same depth never share a Y coordinate
// and every parent is centered on its children.
//
// Coordinates are in layout space. Renderers translate the whole tree by
// (MarginLeft, MarginTop) so the root label has room on the left.
//
// # Edges
//
// [Edge.Path] returns a cubic S-curve between parent and child with both
// control points on the horizontal midpoint. It is cosmetic only; hit testing
// uses node circles.
package layout
