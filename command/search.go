package command

import (
	"path"
	"strings"
)

// SplitPath turns a slash path relative to the root into search segments,
// root name first. Empty segments are ignored.
func SplitPath(rootName, location string) []string {
	ret := []string{rootName}
	for _, segment := range strings.Split(location, "/") {
		if segment == "" || segment == "." {
			continue
		}
		ret = append(ret, segment)
	}
	return ret
}

// Search resolves segments against root. The first segment must name the root.
func Search(segments []string, root *Node) (*Node, error) {
	location := "/" + path.Join(segments...)
	if root == nil || len(segments) == 0 || segments[0] != root.Name {
		return nil, &LookupError{Path: location, Kind: ErrNotFound}
	}
	current := root
	for i, segment := range segments[1:] {
		if !current.IsDirectory {
			return nil, &LookupError{Path: "/" + path.Join(segments[:i+1]...), Kind: ErrNotDirectory}
		}
		child, ok := current.Children[segment]
		if !ok {
			return nil, &LookupError{Path: location, Kind: ErrNotFound}
		}
		current = child
	}
	return current, nil
}

// SearchLeaf resolves segments to a runnable leaf command.
func SearchLeaf(segments []string, root *Node) (*Node, error) {
	node, err := Search(segments, root)
	if err != nil {
		return nil, err
	}
	if node.IsDirectory {
		return nil, &LookupError{Path: "/" + path.Join(segments...), Kind: ErrIsDirectory}
	}
	if node.DescriptorError != nil {
		return nil, &LookupError{Path: "/" + path.Join(segments...), Kind: ErrInvalidDescriptor, Err: node.DescriptorError}
	}
	return node, nil
}
