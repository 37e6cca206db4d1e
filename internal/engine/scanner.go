package engine

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/bamsammich/crtcopy/internal/filter"
)

// EntryKind classifies what the scanner found at a path.
type EntryKind int

const (
	// KindRegular is a regular file.
	KindRegular EntryKind = iota + 1
	// KindIrregular is a symlink, device, socket or named pipe.
	KindIrregular
	// KindUnreadableDir is a subdirectory whose listing failed.
	KindUnreadableDir
)

// Entry is one item yielded by the scanner.
type Entry struct {
	RelPath string // slash-separated, relative to the scan root
	Kind    EntryKind
	Mode    fs.FileMode
	Size    int64
	Err     error // set for KindUnreadableDir
}

// Listing is the full result of a scan, in walk order.
type Listing struct {
	Entries    []Entry
	Files      []Entry
	Irregular  []Entry
	Unreadable []Entry
	Bytes      int64
}

// Scanner walks a tree depth-first in lexical order without following
// symlinks. Directories are descended into but never yielded.
type Scanner struct {
	root   string
	filter *filter.Chain
}

// NewScanner creates a scanner rooted at root. f may be nil.
func NewScanner(root string, f *filter.Chain) *Scanner {
	return &Scanner{root: root, filter: f}
}

// Walk calls fn for every non-directory entry and every unreadable
// subdirectory. A root that cannot be listed is a *FatalEnumerationError.
// An error from fn stops the walk and is returned as is.
func (s *Scanner) Walk(fn func(Entry) error) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return &FatalEnumerationError{Root: s.root, Err: err}
	}
	if !info.IsDir() {
		return &FatalEnumerationError{Root: s.root, Err: errNotDir}
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return &FatalEnumerationError{Root: s.root, Err: err}
	}
	return s.walkEntries("", entries, fn)
}

func (s *Scanner) walkEntries(relDir string, entries []os.DirEntry, fn func(Entry) error) error {
	for _, de := range entries {
		rel := path.Join(relDir, de.Name())

		if de.IsDir() {
			if !s.filter.Match(rel, true) {
				continue
			}
			sub, err := os.ReadDir(s.abs(rel))
			if err != nil {
				if ferr := fn(Entry{RelPath: rel, Kind: KindUnreadableDir, Mode: fs.ModeDir, Err: err}); ferr != nil {
					return ferr
				}
			}
			// ReadDir returns what it managed to read before failing.
			if err := s.walkEntries(rel, sub, fn); err != nil {
				return err
			}
			continue
		}

		if !s.filter.Match(rel, false) {
			continue
		}

		e := Entry{RelPath: rel, Kind: KindIrregular, Mode: de.Type()}
		if de.Type().IsRegular() {
			e.Kind = KindRegular
			if info, err := de.Info(); err == nil {
				e.Mode = info.Mode()
				e.Size = info.Size()
			}
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Scan collects the whole walk into a Listing.
func (s *Scanner) Scan() (Listing, error) {
	var l Listing
	err := s.Walk(func(e Entry) error {
		l.Entries = append(l.Entries, e)
		switch e.Kind {
		case KindRegular:
			l.Files = append(l.Files, e)
			l.Bytes += e.Size
		case KindIrregular:
			l.Irregular = append(l.Irregular, e)
		case KindUnreadableDir:
			l.Unreadable = append(l.Unreadable, e)
		}
		return nil
	})
	return l, err
}

// EnumerateFiles returns the slash-separated relative paths of every regular
// file under root, in walk order.
func EnumerateFiles(root string, f *filter.Chain) ([]string, error) {
	var files []string
	err := NewScanner(root, f).Walk(func(e Entry) error {
		if e.Kind == KindRegular {
			files = append(files, e.RelPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
