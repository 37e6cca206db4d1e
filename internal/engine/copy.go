package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bamsammich/crtcopy/internal/platform"
)

// Copier copies size bytes of content from src into dst. Both files are
// open and positioned at offset 0.
type Copier func(dst, src *os.File, size int64) (platform.CopyResult, error)

// maxTmpBase keeps temp names under NAME_MAX on every common filesystem.
const maxTmpBase = 200

func tmpPathFor(dstPath string) string {
	dir, base := filepath.Split(dstPath)
	id := uuid.New().String()[:8]
	if len(base) > maxTmpBase {
		return filepath.Join(dir, fmt.Sprintf(".crtcopy-%s.tmp", id))
	}
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.crtcopy-tmp", base, id))
}

// copyContent writes the content of srcPath to dstPath through a temp file in
// the destination directory, then renames it into place. Permission bits and
// the access and modification times are carried over.
func (r *run) copyContent(ctx context.Context, srcPath, dstPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return 0, &ContentCopyError{Op: "mkdir", Path: filepath.Dir(dstPath), Err: err}
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return 0, &ContentCopyError{Op: "open", Path: srcPath, Err: err}
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, &ContentCopyError{Op: "stat", Path: srcPath, Err: err}
	}
	if !info.Mode().IsRegular() {
		return 0, &ContentCopyError{Op: "open", Path: srcPath, Err: fmt.Errorf("no longer a regular file")}
	}

	tmpPath := tmpPathFor(dstPath)
	r.tmp.register(tmpPath)
	defer func() {
		r.tmp.deregister(tmpPath)
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return 0, &ContentCopyError{Op: "create", Path: tmpPath, Err: err}
	}

	res, err := r.copyData(ctx, tmp, src, info.Size())
	if err != nil {
		tmp.Close()
		return res.BytesWritten, &ContentCopyError{Op: "copy", Path: srcPath, Err: err}
	}

	// OpenFile is subject to the umask.
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return res.BytesWritten, &ContentCopyError{Op: "chmod", Path: tmpPath, Err: err}
	}

	if err := tmp.Close(); err != nil {
		return res.BytesWritten, &ContentCopyError{Op: "close", Path: tmpPath, Err: err}
	}

	if err := os.Chtimes(tmpPath, atimeOf(info), info.ModTime()); err != nil {
		r.log.Debug("times not preserved", "path", dstPath, "error", err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		return res.BytesWritten, &ContentCopyError{Op: "rename", Path: dstPath, Err: err}
	}

	r.log.Debug("content copied", "path", dstPath, "method", res.Method.String(), "bytes", res.BytesWritten)
	return res.BytesWritten, nil
}

func (r *run) copyData(ctx context.Context, dst, src *os.File, size int64) (platform.CopyResult, error) {
	if r.limiter == nil {
		return r.copier(dst, src, size)
	}
	// The file in flight always finishes, so throttling ignores cancellation.
	rl := newRateLimitedReader(context.WithoutCancel(ctx), src, r.limiter)
	res, err := platform.CopyReadWrite(dst, rl)
	if err == nil && res.BytesWritten < size {
		err = platform.ErrShortCopy
	}
	return res, err
}
