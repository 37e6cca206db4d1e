package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanComplete
	FileCopied
	FileCopiedNoMetadata
	FileSkipped
	FileFailed
	DirUnreadable
	VerifyStarted
	VerifyMissing
	VerifyMismatch
	VerifyComplete
)

var typeNames = [...]string{
	ScanStarted:          "ScanStarted",
	ScanComplete:         "ScanComplete",
	FileCopied:           "FileCopied",
	FileCopiedNoMetadata: "FileCopiedNoMetadata",
	FileSkipped:          "FileSkipped",
	FileFailed:           "FileFailed",
	DirUnreadable:        "DirUnreadable",
	VerifyStarted:        "VerifyStarted",
	VerifyMissing:        "VerifyMissing",
	VerifyMismatch:       "VerifyMismatch",
	VerifyComplete:       "VerifyComplete",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single progress notification from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // relative to the source root
	Readable  string // formatted crtime, FileCopied only
	Size      int64
	Index     int // 1-based position of this file in the run
	Total     int // files in the run (ScanComplete and per-file events)
	Error     error
}
