// Package platform holds the per-OS fast paths for copying file content.
package platform

import (
	"errors"
	"io"
	"os"
	"sync"
)

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
	Sendfile                 // Linux sendfile(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// ErrShortCopy is returned when the source ended before size bytes were read.
var ErrShortCopy = errors.New("source shorter than expected")

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// CopyReadWrite copies r into w through a pooled buffer. It is the portable
// fallback and the path used when the reader must be wrapped (throttling).
func CopyReadWrite(w io.Writer, r io.Reader) (CopyResult, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)

	n, err := io.CopyBuffer(onlyWriter{w}, onlyReader{r}, *bufp)
	return CopyResult{BytesWritten: n, Method: ReadWrite}, err
}

// onlyReader and onlyWriter hide WriterTo/ReaderFrom so io.CopyBuffer
// really uses the buffer.
type (
	onlyReader struct{ io.Reader }
	onlyWriter struct{ io.Writer }
)

// checkSize reports ErrShortCopy when fewer than size bytes were copied.
func checkSize(res CopyResult, size int64) (CopyResult, error) {
	if res.BytesWritten < size {
		return res, ErrShortCopy
	}
	return res, nil
}

// copyReadWriteFiles is the read/write fallback between two open files.
func copyReadWriteFiles(dst, src *os.File, size int64) (CopyResult, error) {
	res, err := CopyReadWrite(dst, src)
	if err != nil {
		return res, err
	}
	return checkSize(res, size)
}
