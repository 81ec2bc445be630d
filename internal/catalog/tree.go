package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownName indicates a name that is not in the namespace.
var ErrUnknownName = errors.New("catalog: unknown metric name")

// Child is one entry returned by Tree.Children.
type Child struct {
	Name string `json:"name"`
	Leaf bool   `json:"leaf"`
}

type treeNode struct {
	id       ID
	leaf     bool
	children map[string]*treeNode
	order    []string
}

// Tree is the dotted-name index of every metric. It is built once and is
// safe for concurrent reads afterwards.
type Tree struct {
	root  *treeNode
	names map[ID]string
}

// NewTree creates an empty Tree.
func NewTree() *Tree {
	return &Tree{
		root:  &treeNode{children: make(map[string]*treeNode)},
		names: make(map[ID]string),
	}
}

// Add registers name as a leaf with the given identity.
func (t *Tree) Add(name string, id ID) error {
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("catalog: tree: invalid name %q", name)
		}
	}
	if _, dup := t.names[id]; dup {
		return fmt.Errorf("catalog: tree: duplicate id %s for %q", id, name)
	}
	node := t.root
	for i, p := range parts {
		if node.leaf {
			return fmt.Errorf("catalog: tree: %q extends leaf", name)
		}
		child, ok := node.children[p]
		if !ok {
			child = &treeNode{children: make(map[string]*treeNode)}
			node.children[p] = child
			node.order = append(node.order, p)
		}
		if i == len(parts)-1 {
			if child.leaf || len(child.children) > 0 {
				return fmt.Errorf("catalog: tree: duplicate name %q", name)
			}
			child.leaf = true
			child.id = id
		}
		node = child
	}
	t.names[id] = name
	return nil
}

func (t *Tree) find(name string) *treeNode {
	if name == "" {
		return t.root
	}
	node := t.root
	for _, p := range strings.Split(name, ".") {
		next, ok := node.children[p]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

// Lookup returns the identity of the leaf called name.
func (t *Tree) Lookup(name string) (ID, error) {
	node := t.find(name)
	if node == nil || !node.leaf {
		return ID{}, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return node.id, nil
}

// Children returns the immediate children of a non-leaf name in
// registration order. The empty name denotes the root.
func (t *Tree) Children(name string) ([]Child, error) {
	node := t.find(name)
	if node == nil || node.leaf {
		return nil, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	out := make([]Child, 0, len(node.order))
	for _, p := range node.order {
		out = append(out, Child{Name: p, Leaf: node.children[p].leaf})
	}
	return out, nil
}

// Name returns the dotted name registered for id.
func (t *Tree) Name(id ID) (string, bool) {
	name, ok := t.names[id]
	return name, ok
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return len(t.names) }
