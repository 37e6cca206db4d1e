package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/crtcopy/internal/crtime"
	"github.com/bamsammich/crtcopy/internal/xattr"
)

// 2020-01-11T08:00:00Z
const testRaw crtime.Raw = 132232032000000000

// createTestTree populates root with:
//
//	root.txt          (17 bytes)
//	big.bin           (320KB)
//	sub/mid.txt       (19 bytes)
//	sub/deep/leaf.txt (17 bytes)
//	link.txt          → root.txt (symlink)
func createTestTree(t *testing.T, root string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755))
	writeFile(t, root, "root.txt", "root file content")
	writeFile(t, root, "big.bin", string(bytes.Repeat([]byte("ABCDEFGHIJKLMNOP"), 20000)))
	writeFile(t, root, "sub/mid.txt", "middle file content")
	writeFile(t, root, "sub/deep/leaf.txt", "leaf file content")
	require.NoError(t, os.Symlink("root.txt", filepath.Join(root, "link.txt")))
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// tag stores raw as the source crtime of root/rel.
func tag(t *testing.T, store *xattr.MemStore, root, rel string, raw crtime.Raw) {
	t.Helper()
	tagBytes(t, store, root, rel, raw.Bytes())
}

func tagBytes(t *testing.T, store *xattr.MemStore, root, rel string, value []byte) {
	t.Helper()
	require.NoError(t, store.Set(filepath.Join(root, filepath.FromSlash(rel)), crtime.SourceAttr, value))
}

func srcDst(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "src"), filepath.Join(dir, "dst")
}

// recordingStore wraps a Store and remembers which paths were touched.
type recordingStore struct {
	xattr.Store
	gets map[string]int
	sets map[string]int
}

func newRecordingStore(inner xattr.Store) *recordingStore {
	return &recordingStore{Store: inner, gets: map[string]int{}, sets: map[string]int{}}
}

func (s *recordingStore) Get(path, name string) ([]byte, error) {
	s.gets[path]++
	return s.Store.Get(path, name)
}

func (s *recordingStore) Set(path, name string, value []byte) error {
	s.sets[path]++
	return s.Store.Set(path, name, value)
}

// tmpLeftovers lists temp files remaining anywhere under root.
func tmpLeftovers(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			name := d.Name()
			if filepath.Ext(name) == ".crtcopy-tmp" || filepath.Ext(name) == ".tmp" {
				out = append(out, p)
			}
		}
		return nil
	})
	return out
}
