package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFile reads rules from path, one per line:
//
//	- pattern   exclude
//	+ pattern   include
//	pattern     exclude
//	# comment
//
// Lines may end in CRLF, as files edited on Windows often do.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	if err := c.Load(f); err != nil {
		return fmt.Errorf("filter file %s: %w", path, err)
	}
	return nil
}

// Load reads rules from r in the LoadFile format.
func (c *Chain) Load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for lineNum := 1; sc.Scan(); lineNum++ {
		pattern, include, ok := parseRule(sc.Text())
		if !ok {
			continue
		}
		if err := c.add(pattern, include); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	return sc.Err()
}

func parseRule(line string) (pattern string, include, ok bool) {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false, false
	}
	switch {
	case strings.HasPrefix(line, "+ "):
		return strings.TrimSpace(line[2:]), true, true
	case strings.HasPrefix(line, "- "):
		return strings.TrimSpace(line[2:]), false, true
	}
	return line, false, true
}
