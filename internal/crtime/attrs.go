package crtime

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bamsammich/crtcopy/internal/xattr"
)

// Attribute names. ntfs-3g exposes the creation time of files on an NTFS
// mount as SourceAttr; copies carry it as RawAttr and ReadableAttr.
const (
	SourceAttr   = "system.ntfs_crtime"
	RawAttr      = "user.ntfs_crtime"
	ReadableAttr = "user.ntfs_crtime_readable"
)

var (
	// ErrMetadataUnavailable means the source crtime could not be read.
	ErrMetadataUnavailable = errors.New("crtime metadata unavailable")
	// ErrMetadataWrite means the crtime attributes could not be set on the copy.
	ErrMetadataWrite = errors.New("crtime metadata write failed")
)

// Reader reads creation times from source files.
type Reader struct {
	store xattr.Store
}

// NewReader returns a Reader backed by store.
func NewReader(store xattr.Store) *Reader {
	return &Reader{store: store}
}

// ReadCrtime returns the creation time of path and the exact bytes to copy
// onto the destination. Every failure wraps ErrMetadataUnavailable.
func (r *Reader) ReadCrtime(path string) (Raw, []byte, error) {
	val, err := r.store.Get(path, SourceAttr)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	}
	raw, b, err := ParseRaw(val)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %w", ErrMetadataUnavailable, path, err)
	}
	return raw, b, nil
}

// Writer attaches creation-time attributes to copied files.
type Writer struct {
	store xattr.Store
}

// NewWriter returns a Writer backed by store.
func NewWriter(store xattr.Store) *Writer {
	return &Writer{store: store}
}

// WriteAttrs sets RawAttr to raw verbatim and ReadableAttr to readable.
// Every failure wraps ErrMetadataWrite; the file content is left as is.
func (w *Writer) WriteAttrs(path string, raw []byte, readable string) error {
	if len(raw) != RawSize {
		return fmt.Errorf("%w: %s: raw value is %d bytes", ErrMetadataWrite, path, len(raw))
	}
	if !utf8.ValidString(readable) {
		return fmt.Errorf("%w: %s: readable value is not UTF-8", ErrMetadataWrite, path)
	}
	// The readable entry is the one a filesystem is likely to reject, so it
	// goes first and a rejection leaves the copy untagged.
	if err := w.store.Set(path, ReadableAttr, []byte(readable)); err != nil {
		return fmt.Errorf("%w: %w", ErrMetadataWrite, err)
	}
	if err := w.store.Set(path, RawAttr, raw); err != nil {
		return fmt.Errorf("%w: %w", ErrMetadataWrite, err)
	}
	return nil
}

// Lookup returns the display string for a copied file: ReadableAttr when
// present and non-empty, otherwise RawAttr decoded and formatted in loc.
// It returns "" and no error when neither attribute exists.
func Lookup(store xattr.Store, path string, loc *time.Location) (string, error) {
	if v, err := store.Get(path, ReadableAttr); err == nil {
		if s := strings.TrimSpace(string(v)); s != "" && utf8.ValidString(s) {
			return s, nil
		}
	} else if !errors.Is(err, xattr.ErrNoAttr) {
		return "", err
	}

	v, err := store.Get(path, RawAttr)
	if errors.Is(err, xattr.ErrNoAttr) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	raw, _, err := ParseRaw(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	t, err := Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return FormatReadable(t.In(loc)), nil
}
