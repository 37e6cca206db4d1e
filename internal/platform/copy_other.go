//go:build !linux

package platform

import "os"

// CopyFile copies size bytes from src into dst with read/write.
func CopyFile(dst, src *os.File, size int64) (CopyResult, error) {
	preallocate(dst, size)
	return copyReadWriteFiles(dst, src, size)
}
