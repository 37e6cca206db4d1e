package ui

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/bamsammich/crtcopy/internal/event"
	"github.com/bamsammich/crtcopy/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
	ansiClear = "\r\033[K"
)

const (
	progressBarWidth = 20
	barMinInterval   = 50 * time.Millisecond
)

// barPresenter prints a feed of finished files above a single status line
// that is redrawn in place: percentage, bar, counts, rate and the file
// currently being worked on.
type barPresenter struct {
	w     io.Writer
	stats stats.ReadTicker
	width int

	current  string
	drawn    bool
	lastDraw time.Time
}

func (p *barPresenter) Run(events <-chan Event) error {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()
	redraw := time.NewTicker(200 * time.Millisecond)
	defer redraw.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearLine()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDraw()
		case <-redraw.C:
			p.draw()
		case <-secTicker.C:
			p.stats.Tick()
		}
	}
}

func (p *barPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case event.ScanStarted:
		p.current = "scanning..."
	case event.ScanComplete:
		p.current = ""
	case event.FileCopied:
		p.feed("✓  %s  %s%s%s", p.styledPath(ev.Path), ansiDim, ev.Readable, ansiReset)
		p.current = ev.Path
	case event.FileCopiedNoMetadata:
		p.feed("!  %s  no crtime: %s", p.styledPath(ev.Path), errText(ev.Error))
		p.current = ev.Path
	case event.FileFailed:
		p.feed("✗  %s  %s", p.styledPath(ev.Path), errText(ev.Error))
		p.current = ev.Path
	case event.FileSkipped:
		p.feed("–  %s  %sskipped%s", p.styledPath(ev.Path), ansiDim, ansiReset)
	case event.DirUnreadable:
		p.feed("✗  %s/  unreadable: %s", p.styledPath(ev.Path), errText(ev.Error))
	case event.VerifyStarted:
		p.feed("%sverifying...%s", ansiDim, ansiReset)
		p.current = "verifying..."
	case event.VerifyMissing:
		p.feed("✗  %s  MISSING", p.styledPath(ev.Path))
	case event.VerifyMismatch:
		p.feed("✗  %s  CONTENT MISMATCH", p.styledPath(ev.Path))
	case event.VerifyComplete:
		p.current = ""
	}
}

// feed prints one permanent line, keeping the status line below it.
func (p *barPresenter) feed(format string, args ...any) {
	p.clearLine()
	fmt.Fprintf(p.w, format+"\n", args...)
	p.draw()
}

func (p *barPresenter) maybeDraw() {
	if time.Since(p.lastDraw) >= barMinInterval {
		p.draw()
	}
}

func (p *barPresenter) draw() {
	fmt.Fprint(p.w, ansiClear+p.statusLine())
	p.drawn = true
	p.lastDraw = time.Now()
}

func (p *barPresenter) statusLine() string {
	snap := p.stats.Snapshot()
	var pct float64
	if snap.FilesTotal > 0 {
		pct = float64(snap.Done()) / float64(snap.FilesTotal)
	}
	line := fmt.Sprintf("%3.0f%%  %s  %s/%s files  %s  eta %s",
		pct*100, ProgressBar(pct, progressBarWidth),
		FormatCount(snap.Done()), FormatCount(snap.FilesTotal),
		FormatRate(p.stats.RollingSpeed(5)),
		FormatETA(p.stats.ETA()))

	if room := p.width - len([]rune(line)) - 3; p.current != "" && room > 8 {
		line += "  " + TruncPath(p.current, room)
	}
	return line
}

func (p *barPresenter) clearLine() {
	if !p.drawn {
		return
	}
	fmt.Fprint(p.w, ansiClear)
	p.drawn = false
}

// styledPath dims the directory part so the file name stands out.
func (p *barPresenter) styledPath(rel string) string {
	dir, base := path.Split(rel)
	if dir == "" {
		return base
	}
	return fmt.Sprintf("%s%s%s%s", ansiDim, dir, ansiReset, base)
}

func (p *barPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
