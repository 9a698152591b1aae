package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/unixblacksteel/mindmap/pkg/errors"
	"github.com/unixblacksteel/mindmap/pkg/mindmap"
)

// Input names where a tree comes from. Exactly one field must be set.
type Input struct {
	// Topic is sent to the generator.
	Topic string `json:"topic,omitempty"`
	// Path is a local JSON or YAML tree file.
	Path string `json:"-"`
	// Tree is an inline tree document.
	Tree *mindmap.Node `json:"tree,omitempty"`
}

// Validate checks that exactly one source is set.
func (in Input) Validate() error {
	n := 0
	for _, set := range []bool{strings.TrimSpace(in.Topic) != "", in.Path != "", in.Tree != nil} {
		if set {
			n++
		}
	}
	switch n {
	case 0:
		return errors.New(errors.ErrCodeInvalidInput, "one of topic, file or tree is required")
	case 1:
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput, "topic, file and tree are mutually exclusive")
	}
}

// Tree resolves in to a validated tree. The boolean reports a cache hit for
// generated trees.
func (r *Runner) Tree(ctx context.Context, in Input, refresh bool) (*mindmap.Node, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}
	switch {
	case in.Tree != nil:
		if err := mindmap.Validate(in.Tree); err != nil {
			return nil, false, err
		}
		return in.Tree, false, nil
	case in.Path != "":
		tree, err := mindmap.ReadFile(in.Path)
		if err != nil {
			return nil, false, err
		}
		r.Logger.Debug("loaded tree", "file", filepath.Base(in.Path), "nodes", mindmap.Count(tree))
		return tree, false, nil
	default:
		return r.MindMap(ctx, strings.TrimSpace(in.Topic), refresh)
	}
}

// Run resolves in and renders the tree.
func (r *Runner) Run(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if in.Topic != "" && in.Path == "" && in.Tree == nil {
		return r.Execute(ctx, in.Topic, opts)
	}
	tree, _, err := r.Tree(ctx, in, opts.Refresh)
	if err != nil {
		return nil, err
	}
	return r.Render(ctx, tree, opts)
}
