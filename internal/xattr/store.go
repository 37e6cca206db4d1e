// Package xattr is a small capability layer over named file metadata
// (extended attributes), so callers can be tested against an in-memory fake.
package xattr

import "errors"

// ErrNoAttr is returned by Get when the named attribute is absent.
var ErrNoAttr = errors.New("attribute not found")

// ErrNotSupported is returned when the filesystem (or platform) cannot store
// extended attributes.
var ErrNotSupported = errors.New("extended attributes not supported")

// Store reads and writes named metadata entries on files.
type Store interface {
	Get(path, name string) ([]byte, error)
	Set(path, name string, value []byte) error
}
