// Package mindmap defines the hierarchical mind-map data model.
//
// # Overview
//
// A mind map is a rooted tree of labelled topics. Trees arrive from the
// remote generation service (see [github.com/unixblacksteel/mindmap/pkg/genai])
// or from hand-written JSON/YAML files, and are treated as immutable once
// handed to the layout engine: a new map is a whole new tree, never a mutation
// of the previous one.
//
// # Wire Format
//
// The JSON shape matches the generation service's response schema:
//
//	{"name": "Root", "children": [{"name": "Child", "children": [...]}]}
//
// A missing "children" key means the node is a leaf. An optional numeric
// "value" is carried through untouched.
//
// # Well-formedness
//
// [Validate] enforces the invariants the layout engine relies on: a non-nil
// root with a non-empty name, no nil children, and a finite tree where every
// node has exactly one parent. Violations are reported as INVALID_TREE errors
// so hosts can degrade to "nothing rendered" instead of crashing.
package mindmap
