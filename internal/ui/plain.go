package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/crtcopy/internal/event"
	"github.com/bamsammich/crtcopy/internal/stats"
)

// plainPresenter writes one line per file to w and periodic progress to
// errW. Used when output is not a terminal.
type plainPresenter struct {
	w     io.Writer
	errW  io.Writer
	stats stats.ReadTicker
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case event.ScanComplete:
		fmt.Fprintf(p.w, "found %s files (%s)\n", FormatCount(int64(ev.Total)), FormatBytes(ev.Size))
	case event.FileCopied:
		fmt.Fprintf(p.w, "%s  %s  %s\n", ev.Path, FormatBytes(ev.Size), ev.Readable)
	case event.FileCopiedNoMetadata:
		fmt.Fprintf(p.w, "%s  %s  no crtime: %s\n", ev.Path, FormatBytes(ev.Size), errText(ev.Error))
	case event.FileFailed:
		fmt.Fprintf(p.w, "%s  FAILED: %s\n", ev.Path, errText(ev.Error))
	case event.FileSkipped:
		fmt.Fprintf(p.w, "%s  skipped\n", ev.Path)
	case event.DirUnreadable:
		fmt.Fprintf(p.w, "%s/  unreadable: %s\n", ev.Path, errText(ev.Error))
	case event.VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case event.VerifyMissing:
		fmt.Fprintf(p.w, "MISSING: %s\n", ev.Path)
	case event.VerifyMismatch:
		fmt.Fprintf(p.w, "MISMATCH: %s\n", ev.Path)
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.FilesTotal == 0 {
		return
	}
	pct := float64(snap.Done()) / float64(snap.FilesTotal) * 100
	fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s files %s/%s %s eta %s\n",
		pct,
		FormatCount(snap.Done()), FormatCount(snap.FilesTotal),
		FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal),
		FormatRate(p.stats.RollingSpeed(10)),
		FormatETA(p.stats.ETA()),
	)
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

func errText(err error) string {
	if err == nil {
		return "error"
	}
	return err.Error()
}
