package ldi

import (
	"os"

	"github.com/edsrzf/mmap-go"

	"diskimage/stub"
)

// Filemap is a page-aligned memory-mapped window over a file region,
// scoped to a single operation: construct, read/write through Bytes,
// destroy. Never stored beyond the call that created it.
type Filemap struct {
	mapping      mmap.MMap
	paddingStart int64
	length       int64
	log          Logger
}

func newFilemap(f *os.File, offset, length int64, log Logger) (*Filemap, error) {
	pageSize := int64(stub.PageSize())
	alignedOffset := AlignDown(uint64(offset), uint64(pageSize))
	paddingStart := offset - int64(alignedOffset)
	alignedLength := int64(AlignTo(uint64(paddingStart+length), uint64(pageSize)))

	m, err := mmap.MapRegion(f, int(alignedLength), mmap.RDWR, 0, int64(alignedOffset))
	if err != nil {
		log.WithField("offset", offset).WithField("length", length).Error("mmap failed: ", err)
		return nil, unknownError(err)
	}
	return &Filemap{mapping: m, paddingStart: paddingStart, length: length, log: log}, nil
}

// Bytes exposes the caller-visible window, offset past any leading
// padding introduced by page alignment.
func (fm *Filemap) Bytes() []byte {
	return fm.mapping[fm.paddingStart : fm.paddingStart+fm.length]
}

// Close unmaps the full aligned range backing this window.
func (fm *Filemap) Close() error {
	if fm.mapping == nil {
		return nil
	}
	err := fm.mapping.Unmap()
	fm.mapping = nil
	if err != nil {
		return unknownError(err)
	}
	return nil
}
