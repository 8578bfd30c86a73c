// Package categories materializes the InSales category tree.
package categories

import (
	"strconv"
	"strings"

	"github.com/xelth-com/insalessync/internal/insales"
)

// Node is one category of the arena
type Node struct {
	ID       int64
	Title    string
	ParentID int64 // 0 for roots
	Children []int64

	// ParentPath holds the ancestor ids, root first, joined by "/"
	ParentPath string
	// PathNamed holds ancestor titles and the own title joined by " / "
	PathNamed string
	reached   bool
}

// SelfPath is the parent path extended by the node itself
func (n *Node) SelfPath() string {
	if n.ParentPath == "" {
		return strconv.FormatInt(n.ID, 10)
	}
	return n.ParentPath + "/" + strconv.FormatInt(n.ID, 10)
}

// Tree is an arena of categories keyed by remote id
type Tree struct {
	nodes map[int64]*Node
	order []int64
	roots []int64
}

// NewTree builds the tree and materializes paths.
// Nodes whose parent is unknown become roots.
func NewTree(remote []insales.Category) *Tree {
	t := &Tree{nodes: make(map[int64]*Node, len(remote))}
	for _, c := range remote {
		if _, dup := t.nodes[c.ID]; dup {
			continue
		}
		n := &Node{ID: c.ID, Title: c.Title}
		if c.ParentID != nil {
			n.ParentID = *c.ParentID
		}
		t.nodes[c.ID] = n
		t.order = append(t.order, c.ID)
	}

	for _, id := range t.order {
		n := t.nodes[id]
		parent, ok := t.nodes[n.ParentID]
		if n.ParentID == 0 || !ok || n.ParentID == n.ID {
			n.ParentID = 0
			t.roots = append(t.roots, id)
			continue
		}
		parent.Children = append(parent.Children, id)
	}

	t.materialize()
	return t
}

// materialize fills paths in one traversal from the roots.
// Nodes on a parent cycle are never reached and keep empty paths.
func (t *Tree) materialize() {
	type frame struct {
		id     int64
		ids    []string
		titles []string
	}

	stack := make([]frame, 0, len(t.roots))
	for i := len(t.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: t.roots[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[f.id]
		if n.reached {
			continue
		}
		n.reached = true
		n.ParentPath = strings.Join(f.ids, "/")
		titles := append(append([]string(nil), f.titles...), n.Title)
		n.PathNamed = strings.Join(titles, " / ")

		ids := append(append([]string(nil), f.ids...), strconv.FormatInt(n.ID, 10))
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: n.Children[i], ids: ids, titles: titles})
		}
	}

	for _, n := range t.nodes {
		if !n.reached {
			n.ParentPath = ""
			n.PathNamed = n.Title
		}
	}
}

// Get returns a node by remote id
func (t *Tree) Get(id int64) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Nodes returns all nodes in input order
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}

// IDs returns all remote ids in input order
func (t *Tree) IDs() []int64 {
	return append([]int64(nil), t.order...)
}

// IsDescendantPath reports whether path lies below selfPath, segment-wise
func IsDescendantPath(path, selfPath string) bool {
	return path == selfPath || strings.HasPrefix(path, selfPath+"/")
}
