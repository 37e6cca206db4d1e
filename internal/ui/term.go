package ui

import (
	"io"

	"golang.org/x/term"
)

// Terminal reports whether w is an interactive terminal and, if so, its
// width in columns. A width of 0 means unknown; NewPresenter then uses 80.
func Terminal(w io.Writer) (isTTY bool, width int) {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false, 0
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return false, 0
	}
	if cols, _, err := term.GetSize(fd); err == nil && cols > 0 {
		width = cols
	}
	return true, width
}
