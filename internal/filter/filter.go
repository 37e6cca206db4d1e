// Package filter decides which source entries take part in a copy, using
// rsync-style include/exclude glob rules.
package filter

// SystemPatterns names the Windows housekeeping entries found at the root of
// most NTFS volumes. They are usually unreadable through ntfs-3g or useless
// on the destination.
var SystemPatterns = []string{
	"/$RECYCLE.BIN/",
	"/System Volume Information/",
	"/$Extend/",
	"/pagefile.sys",
	"/hiberfil.sys",
	"/swapfile.sys",
	"/DumpStack.log.tmp",
}

// Rule represents a single include or exclude filter rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool // true=include, false=exclude
}

// Chain holds an ordered list of filter rules. The zero value matches
// everything; a nil *Chain does too.
type Chain struct {
	rules []Rule
	// FoldCase makes rules added afterwards match case-insensitively, the
	// way NTFS resolves names.
	FoldCase bool
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude adds an exclude rule for the given pattern.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

// AddInclude adds an include rule for the given pattern.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

// AddExcludes adds an exclude rule per pattern, stopping at the first error.
func (c *Chain) AddExcludes(patterns []string) error {
	for _, p := range patterns {
		if err := c.AddExclude(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) add(pattern string, include bool) error {
	cp, err := compilePattern(pattern, c.FoldCase)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: include})
	return nil
}

// Empty reports whether the chain has no rules.
func (c *Chain) Empty() bool {
	return c == nil || len(c.rules) == 0
}

// Match returns true if the path should be INCLUDED (not filtered out).
// relPath is slash-separated and relative to the copy root.
func (c *Chain) Match(relPath string, isDir bool) bool {
	if c == nil {
		return true
	}
	// First match wins.
	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, isDir) {
			return rule.Include
		}
	}
	return true
}
