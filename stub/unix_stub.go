//go:build !windows
// +build !windows

// Package stub isolates the handful of platform-specific open-flag and
// page-size lookups the file layer needs, so the rest of the tree never
// imports golang.org/x/sys/unix directly.
package stub

import (
	"os"

	"golang.org/x/sys/unix"
)

// DirectIOFlag returns the platform's O_DIRECT bit. It does not probe
// the filesystem; whether the flag is honored only shows when an open
// with it is attempted.
func DirectIOFlag() int {
	return unix.O_DIRECT
}

// SyncFlag returns the platform's O_SYNC bit.
func SyncFlag() int {
	return unix.O_SYNC
}

// PageSize returns the host's memory page size, used to align mmap
// offsets.
func PageSize() int {
	return os.Getpagesize()
}
