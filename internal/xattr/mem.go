package xattr

import (
	"fmt"
	"sync"
)

// MemStore is an in-memory Store keyed by path. Paths are taken verbatim;
// nothing is checked against the filesystem.
type MemStore struct {
	mu    sync.Mutex
	attrs map[string]map[string][]byte

	// SetErr, when non-nil, is consulted before every Set. A non-nil
	// return fails the call.
	SetErr func(path, name string) error
	// MaxValueLen rejects values longer than this when positive, mimicking
	// filesystems with small xattr limits.
	MaxValueLen int
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{attrs: make(map[string]map[string][]byte)}
}

// Get returns a copy of the stored value.
func (m *MemStore) Get(path, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.attrs[path][name]
	if !ok {
		return nil, fmt.Errorf("get %s %s: %w", path, name, ErrNoAttr)
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (m *MemStore) Set(path, name string, value []byte) error {
	if m.SetErr != nil {
		if err := m.SetErr(path, name); err != nil {
			return err
		}
	}
	if m.MaxValueLen > 0 && len(value) > m.MaxValueLen {
		return fmt.Errorf("set %s %s: value of %d bytes exceeds limit %d", path, name, len(value), m.MaxValueLen)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attrs == nil {
		m.attrs = make(map[string]map[string][]byte)
	}
	if m.attrs[path] == nil {
		m.attrs[path] = make(map[string][]byte)
	}
	m.attrs[path][name] = append([]byte(nil), value...)
	return nil
}

// Names returns the attribute names recorded for path.
func (m *MemStore) Names(path string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.attrs[path]))
	for n := range m.attrs[path] {
		names = append(names, n)
	}
	return names
}
