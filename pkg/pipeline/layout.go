package pipeline

import (
	"encoding/json"

	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/layout"
)

// LayoutData is the serializable form of a computed layout, used by the json
// format and by API clients that draw the tree themselves.
type LayoutData struct {
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	MaxDepth int        `json:"max_depth"`
	Leaves   int        `json:"leaves"`
	Nodes    []NodeData `json:"nodes"`
	Edges    []EdgeData `json:"edges"`
}

// NodeData is one positioned node.
type NodeData struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Depth  int      `json:"depth"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Parent string   `json:"parent,omitempty"`
	Anchor string   `json:"anchor"`
	Value  *float64 `json:"value,omitempty"`
}

// EdgeData is one parent-child link with its SVG path.
type EdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Path   string `json:"path"`
}

// ExportLayout converts l to its serializable form.
func ExportLayout(l *layout.Layout) LayoutData {
	data := LayoutData{
		Width:    l.Width,
		Height:   l.Height,
		MaxDepth: l.MaxDepth,
		Leaves:   l.Leaves,
		Nodes:    make([]NodeData, 0, len(l.Nodes)),
		Edges:    make([]EdgeData, 0, len(l.Edges)),
	}
	for _, n := range l.Nodes {
		nd := NodeData{
			ID:     n.ID,
			Name:   n.Name,
			Depth:  n.Depth,
			X:      n.X,
			Y:      n.Y,
			Anchor: string(n.LabelAnchor()),
		}
		if n.Parent != nil {
			nd.Parent = n.Parent.ID
		}
		if n.Source != nil {
			nd.Value = n.Source.Value
		}
		data.Nodes = append(data.Nodes, nd)
	}
	for _, e := range l.Edges {
		data.Edges = append(data.Edges, EdgeData{
			Source: e.Source.ID,
			Target: e.Target.ID,
			Path:   e.Path(),
		})
	}
	return data
}

// EncodeLayout returns the indented JSON form of l.
func EncodeLayout(l *layout.Layout) ([]byte, error) {
	if l == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "no layout to encode")
	}
	data, err := json.MarshalIndent(ExportLayout(l), "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return data, nil
}
