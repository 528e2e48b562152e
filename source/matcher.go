package source

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides whether a directory entry counts as a playable file,
// based on an extension suffix and a shell-glob name pattern.
type Matcher struct {
	ext     string
	pattern string
}

// NewMatcher creates a matcher for the given extension suffix and glob
// pattern. An empty extension disables the suffix check; an empty pattern
// or "*" matches every name. The suffix check is an exact byte comparison,
// no case folding.
func NewMatcher(ext, pattern string) Matcher {
	return Matcher{ext: ext, pattern: pattern}
}

// Match reports whether the base name qualifies.
func (m Matcher) Match(name string) bool {
	if m.ext != "" && !strings.HasSuffix(name, m.ext) {
		return false
	}

	if m.pattern == "" || m.pattern == "*" {
		return true
	}

	matched, err := doublestar.Match(m.pattern, name)
	if err != nil {
		// Invalid patterns match nothing.
		return false
	}
	return matched
}
