package tool

import (
	"fmt"
	"strings"
)

const (
	// URIScheme prefixes every resource URI.
	URIScheme = "restcommander://"
	// StateSuffix terminates state resource URIs.
	StateSuffix = "/state"
)

// Name is a tool name: the slash path of a command below the root.
type Name string

// NewName builds a tool name from node segments, dropping the root segment.
func NewName(segments []string) Name {
	if len(segments) < 2 {
		return ""
	}
	return Name(strings.Join(segments[1:], "/"))
}

// Segments returns search segments with rootName prepended.
func (n Name) Segments(rootName string) []string {
	ret := []string{rootName}
	for _, segment := range strings.Split(string(n), "/") {
		if segment != "" {
			ret = append(ret, segment)
		}
	}
	return ret
}

// ResourceURI returns the state resource URI of the command.
func (n Name) ResourceURI() string {
	return URIScheme + string(n) + StateSuffix
}

func (n Name) String() string {
	return string(n)
}

// ParseResourceURI extracts the tool name from a state resource URI.
func ParseResourceURI(uri string) (Name, error) {
	rest, ok := strings.CutPrefix(uri, URIScheme)
	if !ok {
		return "", fmt.Errorf("invalid URI scheme")
	}
	name, ok := strings.CutSuffix(rest, StateSuffix)
	if !ok {
		return "", fmt.Errorf("URI must end with %s", StateSuffix)
	}
	return Name(name), nil
}
