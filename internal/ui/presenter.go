// Package ui renders engine progress events for a terminal or a pipe and
// holds the log fan-out handler used by the CLI.
package ui

import (
	"io"

	"github.com/bamsammich/crtcopy/internal/event"
	"github.com/bamsammich/crtcopy/internal/stats"
)

// Event is the engine's progress event.
type Event = event.Event

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer     io.Writer // per-file lines
	ErrWriter  io.Writer // progress; the TTY when there is one
	Stats      stats.ReadTicker
	Width      int // terminal columns, bar presenter only
	IsTTY      bool
	Quiet      bool
	NoProgress bool
}

// NewPresenter picks quiet, plain or bar output from cfg.
//
//nolint:ireturn // returns whichever presenter fits the terminal
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{stats: cfg.Stats}
	}
	if !cfg.IsTTY || cfg.NoProgress {
		return &plainPresenter{w: cfg.Writer, errW: cfg.ErrWriter, stats: cfg.Stats}
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	return &barPresenter{w: cfg.ErrWriter, stats: cfg.Stats, width: width}
}
