//go:build linux

package engine

import (
	"io/fs"
	"syscall"
	"time"
)

// atimeOf returns the access time recorded in info, or the zero time when
// the platform stat is unavailable.
func atimeOf(info fs.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}
	return time.Unix(st.Atim.Sec, st.Atim.Nsec)
}
