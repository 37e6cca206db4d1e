package ui

import (
	"fmt"

	"github.com/bamsammich/crtcopy/internal/stats"
)

// CompletionSummary builds the final line from a snapshot, e.g.
//
//	done ✓  files 1,204  crtime 1,198  size 2.1 GiB  avg 41 MB/s  time 52s  skipped 3  errors 0
//
// The icon is ✗ when any file failed, lost its crtime or went missing.
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesCopied) / snap.Elapsed.Seconds()
	}

	problems := snap.FilesFailed + snap.FilesNoMetadata + snap.FilesMissing
	icon := "✓"
	if problems > 0 {
		icon = "✗"
	}

	line := fmt.Sprintf("done %s  files %s  crtime %s  size %s  avg %s  time %s",
		icon,
		FormatCount(snap.FilesCopied+snap.FilesNoMetadata),
		FormatCount(snap.FilesCopied),
		FormatBytes(snap.BytesCopied),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
	)
	if snap.FilesSkipped > 0 {
		line += fmt.Sprintf("  skipped %s", FormatCount(snap.FilesSkipped))
	}
	if snap.FilesMissing > 0 {
		line += fmt.Sprintf("  missing %s", FormatCount(snap.FilesMissing))
	}
	return line + fmt.Sprintf("  errors %d", snap.FilesFailed)
}
