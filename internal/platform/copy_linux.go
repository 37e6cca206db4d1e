//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile copies size bytes from the start of src into dst (both positioned
// at offset 0), trying copy_file_range, then sendfile, then read/write.
// A strategy is abandoned only if it failed before writing anything.
func CopyFile(dst, src *os.File, size int64) (CopyResult, error) {
	preallocate(dst, size)

	result, err := copyFileRange(dst, src, size)
	if err == nil || !isFallbackErr(err) || result.BytesWritten > 0 {
		return result, err
	}

	result, err = copySendfile(dst, src, size)
	if err == nil || !isFallbackErr(err) || result.BytesWritten > 0 {
		return result, err
	}

	return copyReadWriteFiles(dst, src, size)
}

func copyFileRange(dst, src *os.File, size int64) (CopyResult, error) {
	var roff, woff int64
	res := CopyResult{Method: CopyFileRange}
	for res.BytesWritten < size {
		n, err := unix.CopyFileRange(int(src.Fd()), &roff, int(dst.Fd()), &woff, int(size-res.BytesWritten), 0)
		if err != nil {
			return res, err
		}
		if n == 0 {
			break
		}
		res.BytesWritten += int64(n)
	}
	return checkSize(res, size)
}

func copySendfile(dst, src *os.File, size int64) (CopyResult, error) {
	var offset int64
	res := CopyResult{Method: Sendfile}
	for res.BytesWritten < size {
		n, err := unix.Sendfile(int(dst.Fd()), int(src.Fd()), &offset, int(size-res.BytesWritten))
		if err != nil {
			return res, err
		}
		if n == 0 {
			break
		}
		res.BytesWritten += int64(n)
	}
	return checkSize(res, size)
}

// isFallbackErr reports whether err means "this syscall can't do it here",
// which is common when the source is a FUSE (ntfs-3g) mount.
func isFallbackErr(err error) bool {
	for _, errno := range []unix.Errno{unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP, unix.EOPNOTSUPP, unix.EBADF} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
