package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrDestinationNotEmpty is returned when the destination already holds files.
	ErrDestinationNotEmpty = errors.New("destination exists and is not empty")
	// ErrDestinationInsideSource is returned when the destination lies within the source tree.
	ErrDestinationInsideSource = errors.New("destination is inside the source tree")
	// ErrVerificationMismatch is wrapped by VerifyResult.Err when the trees differ.
	ErrVerificationMismatch = errors.New("verification mismatch")

	errNotDir = errors.New("not a directory")
)

// FatalEnumerationError means a tree root could not be listed at all. It is
// the only error that aborts a run.
type FatalEnumerationError struct {
	Root string
	Err  error
}

func (e *FatalEnumerationError) Error() string {
	return fmt.Sprintf("enumerate %s: %v", e.Root, e.Err)
}

func (e *FatalEnumerationError) Unwrap() error { return e.Err }

// ContentCopyError is a per-file failure to copy bytes into the destination.
type ContentCopyError struct {
	Op   string
	Path string
	Err  error
}

func (e *ContentCopyError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ContentCopyError) Unwrap() error { return e.Err }
