//go:build !linux && !darwin

package engine

import (
	"io/fs"
	"time"
)

func atimeOf(fs.FileInfo) time.Time { return time.Time{} }
