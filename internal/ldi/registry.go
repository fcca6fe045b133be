package ldi

import (
	"strings"
	"sync"
)

// DiskInfo is the handful of facts the facade caches about an opened
// image.
type DiskInfo struct {
	DiskSize uint64
}

// Driver is the capability set a format backend implements: construct a
// driver-private instance from a path. The DriverInstance it returns
// reports DiskInfo, performs reads/writes, and is destroyed by Close;
// drivers do no bounds checking of their own, the facade in the root
// package does it before forwarding. The facade never reaches into
// format-specific state directly.
type Driver interface {
	Construct(path string, opts OpenOptions) (DriverInstance, error)
}

// DriverInstance is the live, opened handle to one driver's interpretation
// of an image file.
type DriverInstance interface {
	DiskInfo() DiskInfo
	Read(buf []byte, offset int64) error
	Write(buf []byte, offset int64) error
	Close() error
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Driver{}
)

// Register associates name (matched case-insensitively by Lookup) with a
// driver. Intended to be called from a format package's init(), the same
// "static set built once at startup" contract the original expressed
// through a linker set; Go has no equivalent linker trick, so a
// sync.RWMutex-guarded map plays the same role.
func Register(name string, d Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = d
}

// Lookup finds a driver by name, case-insensitively. The bool result is
// false when no driver with that name was registered.
func Lookup(name string) (Driver, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[strings.ToLower(name)]
	return d, ok
}
