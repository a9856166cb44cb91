package command

import (
	"sort"
	"strings"
)

// Node is either a directory with children or an executable leaf command.
type Node struct {
	Name            string           `json:"name"`
	FilePath        string           `json:"-"`
	DescriptorPath  string           `json:"-"`
	HTTPPath        string           `json:"http_path"`
	IsDirectory     bool             `json:"is_directory"`
	Descriptor      *Descriptor      `json:"info,omitempty"`
	DescriptorError error            `json:"-"`
	Children        map[string]*Node `json:"commands,omitempty"`
	// Segments is the full path from the root, root name included.
	Segments []string `json:"-"`
}

// Path returns the slash-joined path without the root segment.
func (n *Node) Path() string {
	if len(n.Segments) < 2 {
		return ""
	}
	return strings.Join(n.Segments[1:], "/")
}

// Valid reports whether a leaf has a usable descriptor.
func (n *Node) Valid() bool {
	return n.IsDirectory || n.DescriptorError == nil
}

// ChildNames returns child names in lexical order.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Leaves returns every valid leaf below n in depth-first lexical order.
func (n *Node) Leaves() []*Node {
	var ret []*Node
	n.Walk(func(node *Node) {
		if !node.IsDirectory && node.Valid() {
			ret = append(ret, node)
		}
	})
	return ret
}

// Walk visits n and all descendants in depth-first lexical order.
func (n *Node) Walk(fn func(node *Node)) {
	fn(n)
	for _, name := range n.ChildNames() {
		n.Children[name].Walk(fn)
	}
}
