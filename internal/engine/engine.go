// Package engine copies a source tree file by file, carrying each file's
// NTFS creation time onto the copy, and verifies the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/crtcopy/internal/crtime"
	"github.com/bamsammich/crtcopy/internal/event"
	"github.com/bamsammich/crtcopy/internal/filter"
	"github.com/bamsammich/crtcopy/internal/platform"
	"github.com/bamsammich/crtcopy/internal/stats"
	"github.com/bamsammich/crtcopy/internal/xattr"
)

// Config describes a copy run.
type Config struct {
	Src     string
	Dst     string
	Logging bool // per-file and summary records go to Logger
	Verify  bool // run Verify after the copy pass

	Store     xattr.Store  // default xattr.NewOSStore()
	Logger    *slog.Logger // default slog.Default()
	Events    chan<- event.Event
	Stats     stats.Writer
	Filter    *filter.Chain
	LocalTime bool  // format readable crtimes in the local zone instead of UTC
	Checksum  bool  // BLAKE3 comparison during verification
	BWLimit   int64 // bytes/s, 0 for unlimited
	Copier    Copier
}

// Summary counts the outcomes of a run.
type Summary struct {
	Total            int // regular files attempted
	Copied           int
	CopiedNoMetadata int
	Skipped          int
	Failed           int
	UnreadableDirs   int
	Bytes            int64
	Elapsed          time.Duration
	Interrupted      bool
}

func (s Summary) String() string {
	return fmt.Sprintf("total=%d copied=%d no_metadata=%d skipped=%d failed=%d unreadable_dirs=%d bytes=%d",
		s.Total, s.Copied, s.CopiedNoMetadata, s.Skipped, s.Failed, s.UnreadableDirs, s.Bytes)
}

// Result is the outcome of Run.
type Result struct {
	Summary    Summary
	Manifest   *Manifest
	Unreadable []Entry
	Verify     *VerifyResult // nil when verification did not run
	VerifyErr  error
	// Err is set only for fatal errors; nothing was copied when it is.
	Err error
}

type run struct {
	cfg      Config
	log      *slog.Logger
	stats    stats.Writer
	reader   *crtime.Reader
	writer   *crtime.Writer
	copier   Copier
	limiter  *rate.Limiter
	loc      *time.Location
	tmp      tmpRegistry
	manifest *Manifest
}

func newRun(cfg Config) *run {
	r := &run{
		cfg:      cfg,
		log:      cfg.Logger,
		stats:    cfg.Stats,
		copier:   cfg.Copier,
		loc:      time.UTC,
		manifest: NewManifest(),
	}
	if !cfg.Logging {
		r.log = slog.New(slog.DiscardHandler)
	} else if r.log == nil {
		r.log = slog.Default()
	}
	if r.stats == nil {
		r.stats = stats.NewCollector()
	}
	store := cfg.Store
	if store == nil {
		store = xattr.NewOSStore()
	}
	r.reader = crtime.NewReader(store)
	r.writer = crtime.NewWriter(store)
	if r.copier == nil {
		r.copier = platform.CopyFile
	}
	if cfg.BWLimit > 0 {
		r.limiter = NewBWLimiter(cfg.BWLimit)
	}
	if cfg.LocalTime {
		r.loc = time.Local
	}
	return r
}

// Run copies cfg.Src to cfg.Dst. Per-file failures are recorded in the
// manifest and never stop the run. Cancellation is observed between files.
func Run(ctx context.Context, cfg Config) Result {
	return newRun(cfg).execute(ctx)
}

func (r *run) execute(ctx context.Context) Result {
	start := time.Now()
	defer func() {
		if err := r.tmp.cleanup(); err != nil {
			r.log.Warn("temp file cleanup", "error", err)
		}
	}()

	r.log.Info("copy started", "src", r.cfg.Src, "dst", r.cfg.Dst)
	emitEvent(r.cfg.Events, event.Event{Type: event.ScanStarted})

	listing, err := NewScanner(r.cfg.Src, r.cfg.Filter).Scan()
	if err != nil {
		r.log.Error("source enumeration failed", "src", r.cfg.Src, "error", err)
		return Result{Manifest: r.manifest, Err: err}
	}
	if err := prepareDest(r.cfg.Src, r.cfg.Dst); err != nil {
		r.log.Error("destination rejected", "dst", r.cfg.Dst, "error", err)
		return Result{Manifest: r.manifest, Err: err}
	}

	total := len(listing.Files)
	r.log.Info("source enumerated",
		"files", total, "bytes", listing.Bytes,
		"irregular", len(listing.Irregular), "unreadable_dirs", len(listing.Unreadable))
	r.checkSpace(listing.Bytes)
	r.stats.SetTotals(int64(total), listing.Bytes)
	emitEvent(r.cfg.Events, event.Event{Type: event.ScanComplete, Total: total, Size: listing.Bytes})

	sum := Summary{Total: total, UnreadableDirs: len(listing.Unreadable)}
	idx := 0
	for _, e := range listing.Entries {
		switch e.Kind {
		case KindUnreadableDir:
			r.log.Warn("directory unreadable", "path", e.RelPath, "error", e.Err)
			emitEvent(r.cfg.Events, event.Event{Type: event.DirUnreadable, Path: e.RelPath, Error: e.Err})
			continue
		case KindIrregular:
			rec := FileRecord{RelPath: e.RelPath, Outcome: SkippedNotRegular,
				Err: fmt.Errorf("not a regular file (%s)", e.Mode.Type())}
			r.record(rec, 0, total)
			continue
		}

		if ctx.Err() != nil {
			sum.Interrupted = true
			break
		}
		idx++
		r.record(r.processFile(ctx, e), idx, total)
	}

	sum.Copied = r.manifest.Count(Copied)
	sum.CopiedNoMetadata = r.manifest.Count(CopiedNoMetadata)
	sum.Skipped = r.manifest.Count(SkippedNotRegular)
	sum.Failed = r.manifest.Count(FailedCopy)
	for _, rec := range r.manifest.Records() {
		sum.Bytes += rec.Bytes
	}
	sum.Elapsed = time.Since(start)

	res := Result{Summary: sum, Manifest: r.manifest, Unreadable: listing.Unreadable}
	r.logSummary(sum)

	if !r.cfg.Verify {
		return res
	}
	if sum.Interrupted {
		r.log.Warn("verification skipped: run interrupted")
		return res
	}

	vr, err := Verify(ctx, VerifyConfig{
		SrcRoot:  r.cfg.Src,
		DstRoot:  r.cfg.Dst,
		Filter:   r.cfg.Filter,
		Checksum: r.cfg.Checksum,
		Events:   r.cfg.Events,
		Stats:    r.stats,
	})
	if err != nil {
		r.log.Error("verification failed", "error", err)
		res.VerifyErr = err
		return res
	}
	res.Verify = &vr
	r.logVerify(vr)
	return res
}

// processFile runs copy, read, decode and write for one regular file and
// turns every failure into an outcome.
func (r *run) processFile(ctx context.Context, e Entry) FileRecord {
	rec := FileRecord{RelPath: e.RelPath}
	srcPath := filepath.Join(r.cfg.Src, filepath.FromSlash(e.RelPath))
	dstPath := filepath.Join(r.cfg.Dst, filepath.FromSlash(e.RelPath))

	n, err := r.copyContent(ctx, srcPath, dstPath)
	if err != nil {
		rec.Outcome = FailedCopy
		rec.Err = err
		return rec
	}
	rec.Bytes = n

	raw, rawBytes, err := r.reader.ReadCrtime(srcPath)
	if err != nil {
		rec.Outcome = CopiedNoMetadata
		rec.Err = err
		return rec
	}
	ts, err := crtime.Decode(raw)
	if err != nil {
		rec.Outcome = CopiedNoMetadata
		rec.Err = fmt.Errorf("%w: %w", crtime.ErrMetadataUnavailable, err)
		return rec
	}
	readable := crtime.FormatReadable(ts.In(r.loc))

	if err := r.writer.WriteAttrs(dstPath, rawBytes, readable); err != nil {
		rec.Outcome = CopiedNoMetadata
		rec.Err = err
		return rec
	}

	rec.Outcome = Copied
	rec.Raw = raw
	rec.Resolved = ts
	rec.Readable = readable
	return rec
}

// record appends rec to the manifest, updates stats and reports it.
func (r *run) record(rec FileRecord, idx, total int) {
	if err := r.manifest.Append(rec); err != nil {
		r.log.Error("manifest", "error", err)
		return
	}

	ev := event.Event{Path: rec.RelPath, Size: rec.Bytes, Index: idx, Total: total, Error: rec.Err}
	var msg string
	switch rec.Outcome {
	case Copied:
		r.stats.AddFilesCopied(1)
		ev.Type, ev.Readable = event.FileCopied, rec.Readable
		msg = "copied"
	case CopiedNoMetadata:
		r.stats.AddFilesNoMetadata(1)
		ev.Type = event.FileCopiedNoMetadata
		msg = "copied without crtime"
	case SkippedNotRegular:
		r.stats.AddFilesSkipped(1)
		ev.Type = event.FileSkipped
		msg = "skipped non-regular entry"
	case FailedCopy:
		r.stats.AddFilesFailed(1)
		ev.Type = event.FileFailed
		msg = "copy failed"
	}
	r.stats.AddBytesCopied(rec.Bytes)

	attrs := []slog.Attr{
		slog.String("path", rec.RelPath),
		slog.String("outcome", rec.Outcome.String()),
	}
	if idx > 0 {
		attrs = append(attrs, slog.String("n", fmt.Sprintf("%d/%d", idx, total)))
	}
	if rec.Outcome == Copied {
		attrs = append(attrs,
			slog.String("crtime", crtime.Hex(rec.Raw)),
			slog.String("readable", rec.Readable))
	}
	if rec.Err != nil {
		attrs = append(attrs, slog.String("error", rec.Cause()))
	}
	r.log.LogAttrs(context.Background(), rec.Outcome.Level(), msg, attrs...)

	emitEvent(r.cfg.Events, ev)
}

func (r *run) logSummary(s Summary) {
	r.log.Info("copy finished",
		"records", r.manifest.Len(),
		"total", s.Total,
		"copied", s.Copied,
		"no_metadata", s.CopiedNoMetadata,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"unreadable_dirs", s.UnreadableDirs,
		"bytes", s.Bytes,
		"elapsed", s.Elapsed.Round(time.Millisecond).String(),
		"interrupted", s.Interrupted)

	for _, rec := range r.manifest.Failures() {
		r.log.LogAttrs(context.Background(), rec.Outcome.Level(), "failure",
			slog.String("path", rec.RelPath),
			slog.String("outcome", rec.Outcome.String()),
			slog.String("error", rec.Cause()))
	}
}

func (r *run) logVerify(vr VerifyResult) {
	if vr.OK() {
		r.log.Info("verification passed", "expected", vr.Expected, "found", vr.Found)
		return
	}
	r.log.Error("verification mismatch",
		"expected", vr.Expected, "found", vr.Found,
		"missing", len(vr.Missing), "extra", len(vr.Extra), "mismatched", len(vr.Mismatched))
	for _, p := range vr.Missing {
		r.log.Error("missing from destination", "path", p)
	}
	for _, p := range vr.Extra {
		r.log.Warn("not in source", "path", p)
	}
	for _, m := range vr.Mismatched {
		if m.Err != nil {
			r.log.Error("checksum failed", "path", m.Path, "error", m.Err)
			continue
		}
		r.log.Error("content differs", "path", m.Path, "src_hash", m.SrcHash, "dst_hash", m.DstHash)
	}
}

// prepareDest creates dst, which must not exist or be an empty directory,
// and must not lie inside src.
func prepareDest(src, dst string) error {
	if inside, err := isWithin(src, dst); err != nil {
		return fmt.Errorf("destination %s: %w", dst, err)
	} else if inside {
		return fmt.Errorf("%s: %w", dst, ErrDestinationInsideSource)
	}

	entries, err := os.ReadDir(dst)
	switch {
	case err == nil:
		if len(entries) > 0 {
			return fmt.Errorf("%s: %w", dst, ErrDestinationNotEmpty)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return fmt.Errorf("create destination: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("destination %s: %w", dst, err)
	}
}

func isWithin(root, p string) (bool, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, err
	}
	absP, err := filepath.Abs(p)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absRoot, absP)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}
