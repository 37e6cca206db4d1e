//go:build darwin

package engine

import (
	"io/fs"
	"syscall"
	"time"
)

func atimeOf(info fs.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}
	return time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
}
