package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bamsammich/crtcopy/internal/crtime"
)

// Outcome is the terminal state of one source entry.
type Outcome int

const (
	// Copied means content and both crtime attributes were written.
	Copied Outcome = iota + 1
	// CopiedNoMetadata means content was written but the crtime was not.
	CopiedNoMetadata
	// SkippedNotRegular means the entry was a symlink, device, socket or pipe.
	SkippedNotRegular
	// FailedCopy means the content could not be copied.
	FailedCopy
)

var outcomeNames = [...]string{
	Copied:            "copied",
	CopiedNoMetadata:  "copied_no_metadata",
	SkippedNotRegular: "skipped_not_regular",
	FailedCopy:        "failed_copy",
}

func (o Outcome) String() string {
	if o > 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Level is the log severity a record with this outcome is reported at.
func (o Outcome) Level() slog.Level {
	switch o {
	case Copied:
		return slog.LevelInfo
	case CopiedNoMetadata, SkippedNotRegular:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// FileRecord is the result of processing one source entry.
type FileRecord struct {
	RelPath string // slash-separated, relative to the source root
	Outcome Outcome
	Err     error
	Bytes   int64

	// Set only when Outcome is Copied.
	Raw      crtime.Raw
	Resolved time.Time
	Readable string
}

// Cause is the human-readable failure reason, empty on success.
func (r FileRecord) Cause() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// HasTimestamp reports whether the record carries a resolved crtime.
func (r FileRecord) HasTimestamp() bool {
	return r.Outcome == Copied
}

// Manifest is the ordered, append-only list of records for one run.
type Manifest struct {
	records []FileRecord
	index   map[string]int
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{index: make(map[string]int)}
}

// Append adds rec. Relative paths must be unique.
func (m *Manifest) Append(rec FileRecord) error {
	if _, dup := m.Lookup(rec.RelPath); dup {
		return fmt.Errorf("manifest: duplicate path %q", rec.RelPath)
	}
	if !rec.HasTimestamp() && (!rec.Resolved.IsZero() || rec.Readable != "") {
		return fmt.Errorf("manifest: %s record %q carries a timestamp", rec.Outcome, rec.RelPath)
	}
	m.index[rec.RelPath] = len(m.records)
	m.records = append(m.records, rec)
	return nil
}

// Len returns the number of records.
func (m *Manifest) Len() int { return len(m.records) }

// Records returns a copy of the records in order.
func (m *Manifest) Records() []FileRecord {
	return append([]FileRecord(nil), m.records...)
}

// Lookup returns the record for relPath.
func (m *Manifest) Lookup(relPath string) (FileRecord, bool) {
	i, ok := m.index[relPath]
	if !ok {
		return FileRecord{}, false
	}
	return m.records[i], true
}

// Count returns how many records have outcome o.
func (m *Manifest) Count(o Outcome) int {
	n := 0
	for _, r := range m.records {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// Failures returns every record that did not end as Copied or
// SkippedNotRegular.
func (m *Manifest) Failures() []FileRecord {
	var out []FileRecord
	for _, r := range m.records {
		if r.Outcome == CopiedNoMetadata || r.Outcome == FailedCopy {
			out = append(out, r)
		}
	}
	return out
}
