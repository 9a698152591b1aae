package mindmap

import (
	"strings"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

// Node is one topic in a mind map.
type Node struct {
	Name     string   `json:"name" yaml:"name"`
	Children []*Node  `json:"children,omitempty" yaml:"children,omitempty"`
	Value    *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// New returns a node with the given name and children.
func New(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Validate checks that root is a well-formed tree.
func Validate(root *Node) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvalidTree, "mind map has no root")
	}
	if strings.TrimSpace(root.Name) == "" {
		return errors.New(errors.ErrCodeInvalidTree, "mind map root has no name")
	}

	seen := map[*Node]bool{root: true}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, c := range n.Children {
			if c == nil {
				return errors.New(errors.ErrCodeInvalidTree, "node %q has a nil child at index %d", n.Name, i)
			}
			if seen[c] {
				return errors.New(errors.ErrCodeInvalidTree, "node %q is reachable from more than one parent", c.Name)
			}
			seen[c] = true
			stack = append(stack, c)
		}
	}
	return nil
}

// Walk visits every node in pre-order (parent before children, children in
// order), passing each node's depth. Returning false from fn stops descent
// into that node's children. root must be well-formed.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	if root == nil {
		return
	}
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(root, 0)
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node, int) bool { n++; return true })
	return n
}

// Depth returns the depth of the deepest node (a lone root has depth 0).
// It returns -1 for a nil root.
func Depth(root *Node) int {
	d := -1
	Walk(root, func(_ *Node, depth int) bool {
		d = max(d, depth)
		return true
	})
	return d
}

// Leaves returns the number of leaves.
func Leaves(root *Node) int {
	n := 0
	Walk(root, func(node *Node, _ int) bool {
		if node.IsLeaf() {
			n++
		}
		return true
	})
	return n
}
