package ldi

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Pure big-endian primitive readers/writers used by the vhd package's
// binary codecs (the vmdk descriptor is text and uses none of them). No I/O, no allocation beyond what
// encoding/binary already does.

func ReadU16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func ReadU32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func ReadU64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
func ReadI32(b []byte) int32  { return int32(binary.BigEndian.Uint32(b)) }

func WriteU16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func WriteU32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func WriteU64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }
func WriteI32(b []byte, v int32)  { binary.BigEndian.PutUint32(b, uint32(v)) }

func ReadBool(b []byte) bool { return b[0] != 0 }

func WriteBool(b []byte, v bool) {
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

// ReadUUID interprets 16 bytes as a big-endian-encoded RFC4122 UUID, the
// representation both the VHD footer's unique-id and the dynamic
// header's parent-unique-id use on disk.
func ReadUUID(b []byte) uuid.UUID {
	var u uuid.UUID
	copy(u[:], b[:16])
	return u
}

func WriteUUID(b []byte, u uuid.UUID) {
	copy(b[:16], u[:])
}

// Version is the two-u16 (major.minor) pairing used by the footer's
// file-format-version and creator-version fields, and the dynamic
// header's header-version field.
type Version struct {
	Major uint16
	Minor uint16
}

func ReadVersion(b []byte) Version {
	return Version{Major: ReadU16(b[0:2]), Minor: ReadU16(b[2:4])}
}

func WriteVersion(b []byte, v Version) {
	WriteU16(b[0:2], v.Major)
	WriteU16(b[2:4], v.Minor)
}

// DiskGeometry is the footer's CHS geometry field: u16 cylinders, u8
// heads, u8 sectors-per-track, packed into a single u32 on disk.
type DiskGeometry struct {
	Cylinders       uint16
	Heads           uint8
	SectorsPerTrack uint8
}

func ReadGeometry(b []byte) DiskGeometry {
	return DiskGeometry{
		Cylinders:       ReadU16(b[0:2]),
		Heads:           b[2],
		SectorsPerTrack: b[3],
	}
}

func WriteGeometry(b []byte, g DiskGeometry) {
	WriteU16(b[0:2], g.Cylinders)
	b[2] = g.Heads
	b[3] = g.SectorsPerTrack
}

// AdditiveChecksum sums every byte of buf, skipping [skipFrom, skipTo),
// and returns the ones-complement of the sum -- the checksum algorithm
// shared by the VHD footer and dynamic header.
func AdditiveChecksum(buf []byte, skipFrom, skipTo int) uint32 {
	var acc uint32
	for i, b := range buf {
		if i >= skipFrom && i < skipTo {
			continue
		}
		acc += uint32(b)
	}
	return ^acc
}
