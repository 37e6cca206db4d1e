//go:build !linux && !darwin

package xattr

import "fmt"

// OSStore reports ErrNotSupported on platforms without xattr syscalls.
type OSStore struct{}

// NewOSStore returns a Store that always fails with ErrNotSupported.
func NewOSStore() OSStore {
	return OSStore{}
}

func (OSStore) Get(path, name string) ([]byte, error) {
	return nil, fmt.Errorf("getxattr %s %s: %w", path, name, ErrNotSupported)
}

func (OSStore) Set(path, name string, _ []byte) error {
	return fmt.Errorf("setxattr %s %s: %w", path, name, ErrNotSupported)
}
