// Package vhd implements the fixed and dynamic VHD image formats: the
// 512-byte footer, the 1024-byte sparse header, the block allocation
// table, and the per-block sector bitmap, wired together by Instance.
package vhd

import (
	"github.com/google/uuid"

	"diskimage/internal/ldi"
)

const FooterSize = 512

var footerCookie = [8]byte{'c', 'o', 'n', 'e', 'c', 't', 'i', 'x'}

// DiskType enumerates the footer's disk-type field.
type DiskType uint32

const (
	DiskTypeNone DiskType = iota
	DiskTypeReserved1
	DiskTypeFixed
	DiskTypeDynamic
	DiskTypeDifferencing
	DiskTypeReserved5
	DiskTypeReserved6
)

// FooterStatus is a bitset describing the validity of a decoded footer.
type FooterStatus uint8

const (
	FooterOK          FooterStatus = 0
	FooterBadCookie   FooterStatus = 1 << 0
	FooterBadChecksum FooterStatus = 1 << 1
)

func (s FooterStatus) OK() bool { return s == FooterOK }

// Footer is the decoded form of a VHD's 512-byte trailing sector.
type Footer struct {
	Cookie            [8]byte
	Features          uint32
	FileFormatVersion ldi.Version
	DataOffset        uint64
	TimeStamp         int32
	CreatorApp        [4]byte
	CreatorVersion    ldi.Version
	CreatorHostOS     uint32
	OriginalSize      uint64
	CurrentSize       uint64
	DiskGeometry      ldi.DiskGeometry
	DiskType          DiskType
	StoredChecksum    uint32
	UniqueID          uuid.UUID
	SavedState        bool

	calculatedChecksum uint32
	log                ldi.Logger
}

// NewFooter decodes a 512-byte footer sector. Only a short buffer is a
// programmer error (panic, via slice indexing); any byte pattern beyond
// that decodes to *some* Footer, whose Status() reports whether it's
// trustworthy.
func NewFooter(buf [FooterSize]byte, log ldi.Logger) *Footer {
	if log == nil {
		log = ldi.NopLogger()
	}
	f := &Footer{log: log}
	copy(f.Cookie[:], buf[0:8])
	f.Features = ldi.ReadU32(buf[8:12])
	f.FileFormatVersion = ldi.ReadVersion(buf[12:16])
	f.DataOffset = ldi.ReadU64(buf[16:24])
	f.TimeStamp = ldi.ReadI32(buf[24:28])
	copy(f.CreatorApp[:], buf[28:32])
	f.CreatorVersion = ldi.ReadVersion(buf[32:36])
	f.CreatorHostOS = ldi.ReadU32(buf[36:40])
	f.OriginalSize = ldi.ReadU64(buf[40:48])
	f.CurrentSize = ldi.ReadU64(buf[48:56])
	f.DiskGeometry = ldi.ReadGeometry(buf[56:60])
	f.DiskType = DiskType(ldi.ReadU32(buf[60:64]))
	f.StoredChecksum = ldi.ReadU32(buf[64:68])
	f.UniqueID = ldi.ReadUUID(buf[68:84])
	f.SavedState = ldi.ReadBool(buf[84:85])

	f.calculatedChecksum = ldi.AdditiveChecksum(buf[:], 64, 68)
	log.WithField("disk_type", f.DiskType).WithField("current_size", f.CurrentSize).Debug("decoded footer")
	return f
}

// Status reports which validity checks this footer fails, if any.
func (f *Footer) Status() FooterStatus {
	var s FooterStatus
	if f.Cookie != footerCookie {
		s |= FooterBadCookie
	}
	if f.StoredChecksum != f.calculatedChecksum {
		s |= FooterBadChecksum
	}
	return s
}

// DiskSize returns the footer's current-size field.
func (f *Footer) DiskSize() uint64 { return f.CurrentSize }

// Offset returns the footer's data-offset field reinterpreted as signed,
// so a fixed disk's all-ones sentinel reads as -1.
func (f *Footer) Offset() int64 { return int64(f.DataOffset) }

// Encode re-serializes the footer, writing the freshly-calculated
// checksum (not whatever StoredChecksum held when decoded) into the
// checksum field, so a round trip through NewFooter/Encode is always
// internally consistent even if the source bytes were corrupt.
func (f *Footer) Encode() [FooterSize]byte {
	var buf [FooterSize]byte
	copy(buf[0:8], f.Cookie[:])
	ldi.WriteU32(buf[8:12], f.Features)
	ldi.WriteVersion(buf[12:16], f.FileFormatVersion)
	ldi.WriteU64(buf[16:24], f.DataOffset)
	ldi.WriteI32(buf[24:28], f.TimeStamp)
	copy(buf[28:32], f.CreatorApp[:])
	ldi.WriteVersion(buf[32:36], f.CreatorVersion)
	ldi.WriteU32(buf[36:40], f.CreatorHostOS)
	ldi.WriteU64(buf[40:48], f.OriginalSize)
	ldi.WriteU64(buf[48:56], f.CurrentSize)
	ldi.WriteGeometry(buf[56:60], f.DiskGeometry)
	ldi.WriteU32(buf[60:64], uint32(f.DiskType))
	ldi.WriteUUID(buf[68:84], f.UniqueID)
	ldi.WriteBool(buf[84:85], f.SavedState)

	checksum := ldi.AdditiveChecksum(buf[:], 64, 68)
	ldi.WriteU32(buf[64:68], checksum)
	f.StoredChecksum = checksum
	f.calculatedChecksum = checksum
	return buf
}
