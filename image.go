// Package diskimage implements a pluggable virtual-disk image engine:
// a fixed/dynamic VHD driver and a VMDK descriptor-based driver behind a
// single bounds-checked facade, the way an external gate/ioctl transport
// or CLI front-end would consume it. Those transports are not part of
// this module; see the vhd and vmdk subpackages for the format drivers
// and internal/ldi for the shared codec, file, and error primitives.
package diskimage

import (
	"diskimage/internal/ldi"
)

// Re-exported so callers of this package never need to import the
// internal primitives package directly.
type (
	OpenOptions = ldi.OpenOptions
	Logger      = ldi.Logger
	Error       = ldi.Error
	ErrorKind   = ldi.ErrorKind
	DiskInfo    = ldi.DiskInfo
)

const (
	NoMem            = ldi.NoMem
	FormatUnknown    = ldi.FormatUnknown
	FileNotSupported = ldi.FileNotSupported
	OutOfRange       = ldi.OutOfRange
	ParseError       = ldi.ParseError
	IO               = ldi.IO
	Unknown          = ldi.Unknown
)

var NopLogger = ldi.NopLogger
var NewLogger = ldi.NewLogger

// Image is the opaque handle returned by Open. Its driver binding is
// immutable for the lifetime of the handle.
type Image struct {
	driver ldi.DriverInstance
	info   DiskInfo
}

// Open resolves formatName against the registered drivers (case
// insensitive) and constructs an Image over path.
func Open(path string, formatName string, opts OpenOptions) (*Image, error) {
	d, ok := ldi.Lookup(formatName)
	if !ok {
		return nil, ldi.NewError(ldi.FormatUnknown, nil)
	}
	inst, err := d.Construct(path, opts)
	if err != nil {
		return nil, err
	}
	return &Image{driver: inst, info: inst.DiskInfo()}, nil
}

// Close releases the driver's resources.
func (img *Image) Close() error {
	return img.driver.Close()
}

// Info reports the cached disk size.
func (img *Image) Info() DiskInfo {
	return img.info
}

func (img *Image) checkRange(off int64, n int) error {
	if off < 0 || uint64(off)+uint64(n) > img.info.DiskSize {
		return ldi.NewError(ldi.OutOfRange, nil)
	}
	return nil
}

// Read fills buf from offset off, failing with OutOfRange if the
// requested span falls outside [0, disksize].
func (img *Image) Read(buf []byte, off int64) error {
	if err := img.checkRange(off, len(buf)); err != nil {
		return err
	}
	return img.driver.Read(buf, off)
}

// Write stores buf at offset off, failing with OutOfRange under the same
// rule as Read.
func (img *Image) Write(buf []byte, off int64) error {
	if err := img.checkRange(off, len(buf)); err != nil {
		return err
	}
	return img.driver.Write(buf, off)
}
