package matcher

import "path"

// Match reports whether name satisfies the glob pattern. "*" matches any
// name, an empty pattern matches nothing and malformed patterns never match.
func Match(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	if pattern == "" {
		return false
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// MatchAny reports whether name satisfies at least one pattern.
func MatchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if Match(pattern, name) {
			return true
		}
	}
	return false
}
