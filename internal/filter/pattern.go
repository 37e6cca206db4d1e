package filter

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// compiledPattern is an rsync-style rule pattern. Globbing follows
// doublestar: * and ? stop at /, ** spans directories, [...] and {a,b}
// work as usual.
type compiledPattern struct {
	glob     string
	original string
	anchored bool // pattern starts with / or contains one
	dirOnly  bool // pattern ends with /
	foldCase bool
}

func compilePattern(pattern string, foldCase bool) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern, foldCase: foldCase}

	glob := pattern
	if strings.HasSuffix(glob, "/") {
		cp.dirOnly = true
		glob = strings.TrimSuffix(glob, "/")
	}
	if strings.HasPrefix(glob, "/") {
		cp.anchored = true
		glob = strings.TrimPrefix(glob, "/")
	} else if strings.Contains(glob, "/") {
		cp.anchored = true
	}
	if glob == "" {
		return nil, fmt.Errorf("empty pattern %q", pattern)
	}

	// Unanchored patterns match the basename at any depth.
	if !cp.anchored {
		glob = "**/" + glob
	}
	if foldCase {
		glob = strings.ToLower(glob)
	}
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	cp.glob = glob
	return cp, nil
}

// match reports whether relPath (slash-separated, relative to the root)
// matches the pattern.
func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	if cp.foldCase {
		relPath = strings.ToLower(relPath)
	}
	ok, _ := doublestar.Match(cp.glob, relPath) //nolint:errcheck // validated in compilePattern
	return ok
}

func (cp *compiledPattern) String() string {
	return cp.original
}
