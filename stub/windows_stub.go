//go:build windows

package stub

import "os"

// Windows has no O_DIRECT/O_SYNC equivalent exposed through os.OpenFile
// flags; DirectIO requests are silently downgraded to buffered I/O.

func DirectIOFlag() int {
	return 0
}

func SyncFlag() int {
	return 0
}

func PageSize() int {
	return os.Getpagesize()
}
