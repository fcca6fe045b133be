package vhd

import "diskimage/internal/ldi"

// UnallocatedBlock is the BAT sentinel marking a block that has never
// been written.
const UnallocatedBlock uint32 = 0xFFFFFFFF

// BAT is the Block Allocation Table: one big-endian u32 sector offset
// per block, UnallocatedBlock where no block has been allocated yet.
type BAT struct {
	entries []uint32
	log     ldi.Logger
}

// NewBAT decodes numblocks big-endian u32 entries from source.
func NewBAT(source []byte, numblocks uint32, log ldi.Logger) *BAT {
	if log == nil {
		log = ldi.NopLogger()
	}
	b := &BAT{entries: make([]uint32, numblocks), log: log}
	for i := range b.entries {
		b.entries[i] = ldi.ReadU32(source[i*4 : i*4+4])
	}
	return b
}

// Get returns the sector offset for block, or UnallocatedBlock.
func (b *BAT) Get(block uint32) uint32 {
	return b.entries[block]
}

// Set records the sector offset of a newly allocated block.
func (b *BAT) Set(block uint32, sectorOffset uint32) {
	b.entries[block] = sectorOffset
	b.log.WithField("block", block).WithField("sector_offset", sectorOffset).Debug("allocated block")
}

// Len returns the number of block entries.
func (b *BAT) Len() uint32 { return uint32(len(b.entries)) }

// ByteSize is the encoded size of the whole table in bytes.
func (b *BAT) ByteSize() uint64 { return uint64(len(b.entries)) * 4 }

// Encode writes the table, big-endian, into dest (which must be at
// least ByteSize() bytes).
func (b *BAT) Encode(dest []byte) {
	for i, v := range b.entries {
		ldi.WriteU32(dest[i*4:i*4+4], v)
	}
}
