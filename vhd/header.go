package vhd

import (
	"github.com/google/uuid"

	"diskimage/internal/ldi"
)

const HeaderSize = 1024

var headerCookie = [8]byte{'c', 'x', 's', 'p', 'a', 'r', 's', 'e'}

// HeaderStatus mirrors FooterStatus for the dynamic header.
type HeaderStatus uint8

const (
	HeaderOK          HeaderStatus = 0
	HeaderBadCookie   HeaderStatus = 1 << 0
	HeaderBadChecksum HeaderStatus = 1 << 1
)

func (s HeaderStatus) OK() bool { return s == HeaderOK }

// Header is the decoded form of a dynamic VHD's 1024-byte sparse header.
// ParentLocatorEntries is kept as raw bytes: it is opaque to this
// engine, since differencing disks are out of scope (see DESIGN.md).
type Header struct {
	Cookie               [8]byte
	DataOffset           uint64
	TableOffset          uint64
	HeaderVersion        ldi.Version
	MaxTableEntries      uint32
	BlockSize            uint32
	StoredChecksum       uint32
	ParentUniqueID       uuid.UUID
	ParentTimeStamp      int32
	ParentUnicodeName    [512]byte
	ParentLocatorEntries [8 * 24]byte

	calculatedChecksum uint32
	log                ldi.Logger
}

// NewHeader decodes a 1024-byte dynamic header sector.
func NewHeader(buf [HeaderSize]byte, log ldi.Logger) *Header {
	if log == nil {
		log = ldi.NopLogger()
	}
	h := &Header{log: log}
	copy(h.Cookie[:], buf[0:8])
	h.DataOffset = ldi.ReadU64(buf[8:16])
	h.TableOffset = ldi.ReadU64(buf[16:24])
	h.HeaderVersion = ldi.ReadVersion(buf[24:28])
	h.MaxTableEntries = ldi.ReadU32(buf[28:32])
	h.BlockSize = ldi.ReadU32(buf[32:36])
	h.StoredChecksum = ldi.ReadU32(buf[36:40])
	h.ParentUniqueID = ldi.ReadUUID(buf[40:56])
	h.ParentTimeStamp = ldi.ReadI32(buf[56:60])
	copy(h.ParentUnicodeName[:], buf[64:576])
	copy(h.ParentLocatorEntries[:], buf[576:768])

	// The checksum covers the whole header sector except the checksum
	// field itself, including the (unused, here) parent locator region
	// -- this core never writes a parent-chained disk, but faithfully
	// reproduces what the original footprint checksums so a header
	// written by this engine is indistinguishable from one written by
	// any other correct implementation.
	h.calculatedChecksum = ldi.AdditiveChecksum(buf[:], 36, 40)
	log.WithField("max_table_entries", h.MaxTableEntries).WithField("block_size", h.BlockSize).Debug("decoded dynamic header")
	return h
}

func (h *Header) Status() HeaderStatus {
	var s HeaderStatus
	if h.Cookie != headerCookie {
		s |= HeaderBadCookie
	}
	if h.StoredChecksum != h.calculatedChecksum {
		s |= HeaderBadChecksum
	}
	return s
}

// SectorsPerBlock is BlockSize expressed in 512-byte sectors.
func (h *Header) SectorsPerBlock() uint32 {
	return h.BlockSize / 512
}

// BitmapSize is the size, in bytes, of each block's leading
// sector-presence bitmap: one bit per sector, rounded up to a whole
// 512-byte sector.
func (h *Header) BitmapSize() uint64 {
	bits := uint64(h.SectorsPerBlock())
	bytes := ldi.AlignTo(bits, 8) / 8
	return ldi.AlignTo(bytes, 512)
}

// Encode re-serializes the header, recomputing the checksum.
func (h *Header) Encode() [HeaderSize]byte {
	var buf [HeaderSize]byte
	copy(buf[0:8], h.Cookie[:])
	ldi.WriteU64(buf[8:16], h.DataOffset)
	ldi.WriteU64(buf[16:24], h.TableOffset)
	ldi.WriteVersion(buf[24:28], h.HeaderVersion)
	ldi.WriteU32(buf[28:32], h.MaxTableEntries)
	ldi.WriteU32(buf[32:36], h.BlockSize)
	ldi.WriteUUID(buf[40:56], h.ParentUniqueID)
	ldi.WriteI32(buf[56:60], h.ParentTimeStamp)
	copy(buf[64:576], h.ParentUnicodeName[:])
	copy(buf[576:768], h.ParentLocatorEntries[:])

	checksum := ldi.AdditiveChecksum(buf[:], 36, 40)
	ldi.WriteU32(buf[36:40], checksum)
	h.StoredChecksum = checksum
	h.calculatedChecksum = checksum
	return buf
}
