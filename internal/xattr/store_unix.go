//go:build linux || darwin

package xattr

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// OSStore is the Store backed by getxattr(2)/setxattr(2).
type OSStore struct{}

// NewOSStore returns a Store operating on the real filesystem.
func NewOSStore() OSStore {
	return OSStore{}
}

// Get returns the value of the named attribute. Symlinks are followed.
func (OSStore) Get(path, name string) ([]byte, error) {
	// The size can change between the probe and the read; retry on ERANGE.
	for range 3 {
		sz, err := unix.Getxattr(path, name, nil)
		if err != nil {
			return nil, wrapErr("getxattr", path, name, err)
		}
		if sz == 0 {
			return []byte{}, nil
		}
		buf := make([]byte, sz)
		n, err := unix.Getxattr(path, name, buf)
		if errors.Is(err, unix.ERANGE) {
			continue
		}
		if err != nil {
			return nil, wrapErr("getxattr", path, name, err)
		}
		return buf[:n], nil
	}
	return nil, fmt.Errorf("getxattr %s %s: value size kept changing", path, name)
}

// Set creates or replaces the named attribute.
func (OSStore) Set(path, name string, value []byte) error {
	if err := unix.Setxattr(path, name, value, 0); err != nil {
		return wrapErr("setxattr", path, name, err)
	}
	return nil
}

func wrapErr(op, path, name string, err error) error {
	switch {
	case errors.Is(err, errnoNoAttr):
		err = fmt.Errorf("%w: %w", ErrNoAttr, err)
	case errors.Is(err, unix.ENOTSUP), errors.Is(err, unix.EOPNOTSUPP):
		err = fmt.Errorf("%w: %w", ErrNotSupported, err)
	}
	return fmt.Errorf("%s %s %s: %w", op, path, name, err)
}
