package ldi

import (
	"os"
	"path/filepath"

	"diskimage/stub"
)

// File owns a backing file handle and a duplicated path, needed to
// resolve sibling files (a VMDK descriptor pointing at its data file).
type File struct {
	handle *os.File
	path   string
	log    Logger
}

// OpenFile opens path read-write. When opts.DirectIO is set it attempts
// to add the platform's O_DIRECT flag; unsupported platforms/filesystems
// silently fall back to buffered I/O rather than failing the open.
// Writes always request the platform's O_SYNC-equivalent durability.
func OpenFile(path string, opts OpenOptions) (*File, error) {
	log := opts.logger("file")
	flags := os.O_RDWR | stub.SyncFlag()
	if opts.DirectIO {
		flags |= stub.DirectIOFlag()
	}
	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		log.WithField("path", path).Warn("open with requested flags failed, retrying without O_DIRECT")
		f, err = os.OpenFile(path, os.O_RDWR|stub.SyncFlag(), 0)
	}
	if err != nil {
		return nil, ioError(err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	log.WithField("path", abs).Debug("opened file")
	return &File{handle: f, path: abs, log: log}, nil
}

// Close releases the underlying handle. Idempotent: closing an already
// closed File is a no-op.
func (f *File) Close() error {
	if f.handle == nil {
		return nil
	}
	err := f.handle.Close()
	f.handle = nil
	if err != nil {
		return ioError(err)
	}
	return nil
}

// Handle exposes the underlying *os.File for mmap-go, which needs the
// raw handle rather than a wrapped abstraction.
func (f *File) Handle() *os.File {
	return f.handle
}

// Path returns the duplicated absolute path this File was opened with.
func (f *File) Path() string {
	return f.path
}

// Directory returns the parent directory of Path, used by the VMDK
// driver to resolve a descriptor's sibling extent file.
func (f *File) Directory() string {
	return filepath.Dir(f.path)
}

// Size returns the current file size in bytes.
func (f *File) Size() (uint64, error) {
	st, err := f.handle.Stat()
	if err != nil {
		return 0, ioError(err)
	}
	return uint64(st.Size()), nil
}

// SetSize resizes the file to newSize. Growing the file zero-fills the
// extension in 512-byte chunks (rather than relying on sparse-file
// semantics) because the VHD dynamic block allocator depends on the new
// region reading back as deterministic zeros. Shrinking truncates.
func (f *File) SetSize(newSize uint64) error {
	old, err := f.Size()
	if err != nil {
		return err
	}
	if newSize == old {
		return nil
	}
	if newSize < old {
		if err := f.handle.Truncate(int64(newSize)); err != nil {
			return ioError(err)
		}
		return nil
	}
	return f.writeZeros(old, newSize-old)
}

const zeroChunk = 512

func (f *File) writeZeros(at, length uint64) error {
	buf := make([]byte, zeroChunk)
	remaining := length
	offset := int64(at)
	for remaining > 0 {
		n := uint64(zeroChunk)
		if remaining < n {
			n = remaining
		}
		written, err := f.handle.WriteAt(buf[:n], offset)
		if err != nil {
			return ioError(err)
		}
		offset += int64(written)
		remaining -= uint64(written)
	}
	return nil
}

// Map creates a page-aligned Filemap over [offset, offset+length) of
// this file's contents.
func (f *File) Map(offset, length int64) (*Filemap, error) {
	return newFilemap(f.handle, offset, length, f.log)
}
