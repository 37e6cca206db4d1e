package xattr

import "golang.org/x/sys/unix"

const errnoNoAttr = unix.ENODATA
