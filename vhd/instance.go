package vhd

import (
	"diskimage/internal/ldi"
)

// Instance is the live, opened handle to a VHD file -- fixed or
// dynamic -- behind the Driver interface.
type Instance struct {
	file   *ldi.File
	footer *Footer
	header *Header // nil for fixed disks
	bat    *BAT    // nil for fixed disks
	fixed  bool

	fileSize uint64
	log      ldi.Logger
}

// Construct opens path and decodes enough of it to serve reads/writes:
// the trailing footer always, and for dynamic disks the sparse header
// and block allocation table as well. Any failure along the way closes
// whatever was already opened.
func Construct(path string, opts ldi.OpenOptions) (*Instance, error) {
	log := opts.Logger
	if log == nil {
		log = ldi.NopLogger()
	}
	log = log.WithField("component", "vhd").WithField("path", path)

	file, err := ldi.OpenFile(path, opts)
	if err != nil {
		return nil, err
	}

	size, err := file.Size()
	if err != nil {
		file.Close()
		return nil, err
	}
	if size < FooterSize {
		file.Close()
		return nil, ldi.NewError(ldi.FileNotSupported, nil)
	}

	footerMap, err := file.Map(int64(size)-FooterSize, FooterSize)
	if err != nil {
		file.Close()
		return nil, err
	}
	var footerBytes [FooterSize]byte
	copy(footerBytes[:], footerMap.Bytes())
	footerMap.Close()

	footer := NewFooter(footerBytes, log)
	if !footer.Status().OK() {
		log.Warn("footer failed validation: ", footer.Status())
	}

	inst := &Instance{file: file, footer: footer, fileSize: size, log: log}

	switch footer.DiskType {
	case DiskTypeFixed:
		inst.fixed = true
		return inst, nil
	case DiskTypeDynamic:
		if err := inst.loadDynamic(); err != nil {
			file.Close()
			return nil, err
		}
		return inst, nil
	default:
		file.Close()
		return nil, ldi.NewError(ldi.FileNotSupported, nil)
	}
}

func (inst *Instance) loadDynamic() error {
	headerMap, err := inst.file.Map(inst.footer.Offset(), HeaderSize)
	if err != nil {
		return err
	}
	var headerBytes [HeaderSize]byte
	copy(headerBytes[:], headerMap.Bytes())
	headerMap.Close()

	header := NewHeader(headerBytes, inst.log)
	if !header.Status().OK() {
		inst.log.Warn("dynamic header failed validation: ", header.Status())
	}
	inst.header = header

	batSize := int64(header.MaxTableEntries) * 4
	batMap, err := inst.file.Map(int64(header.TableOffset), batSize)
	if err != nil {
		return err
	}
	batBytes := make([]byte, batSize)
	copy(batBytes, batMap.Bytes())
	batMap.Close()

	inst.bat = NewBAT(batBytes, header.MaxTableEntries, inst.log)
	return nil
}

// DiskInfo reports the footer's current-size as the addressable disk
// size.
func (inst *Instance) DiskInfo() ldi.DiskInfo {
	return ldi.DiskInfo{DiskSize: inst.footer.DiskSize()}
}

// Close releases the backing file. The footer/header/BAT are plain
// in-memory structs with nothing further to release.
func (inst *Instance) Close() error {
	return inst.file.Close()
}

// Read fills buf from the logical disk offset off.
func (inst *Instance) Read(buf []byte, off int64) error {
	if inst.fixed {
		return inst.rawCopy(buf, off, false)
	}
	return inst.dynamicIO(buf, off, false)
}

// Write stores buf at the logical disk offset off.
func (inst *Instance) Write(buf []byte, off int64) error {
	if inst.fixed {
		return inst.rawCopy(buf, off, true)
	}
	return inst.dynamicIO(buf, off, true)
}

// rawCopy is the fixed-disk path: offsets map one-to-one onto the
// backing file.
func (inst *Instance) rawCopy(buf []byte, off int64, write bool) error {
	fm, err := inst.file.Map(off, int64(len(buf)))
	if err != nil {
		return err
	}
	defer fm.Close()
	if write {
		copy(fm.Bytes(), buf)
	} else {
		copy(buf, fm.Bytes())
	}
	return nil
}

// dynamicIO walks the logical offset range one block at a time,
// resolving each block through the BAT and, on write, allocating
// unmapped blocks as it goes.
func (inst *Instance) dynamicIO(buf []byte, off int64, write bool) error {
	blockSize := uint64(inst.header.BlockSize)
	bitmapSize := inst.header.BitmapSize()
	remaining := len(buf)
	bufOff := 0
	offset := uint64(off)

	for remaining > 0 {
		block := uint32(offset / blockSize)
		offsetInBlock := offset % blockSize
		bytesLeftInBlock := blockSize - offsetInBlock
		toMove := bytesLeftInBlock
		if uint64(remaining) < toMove {
			toMove = uint64(remaining)
		}

		batEntry := inst.bat.Get(block)
		if batEntry == UnallocatedBlock {
			if !write {
				clear(buf[bufOff : bufOff+int(toMove)])
				offset += toMove
				bufOff += int(toMove)
				remaining -= int(toMove)
				continue
			}
			var err error
			batEntry, err = inst.extend()
			if err != nil {
				return err
			}
			inst.bat.Set(block, batEntry)
			if err := inst.flushBAT(); err != nil {
				return err
			}
		}

		blockFileOffset := int64(batEntry)*512 + int64(bitmapSize) + int64(offsetInBlock)
		fm, err := inst.file.Map(blockFileOffset, int64(toMove))
		if err != nil {
			return err
		}
		if write {
			copy(fm.Bytes(), buf[bufOff:bufOff+int(toMove)])
		} else {
			copy(buf[bufOff:bufOff+int(toMove)], fm.Bytes())
		}
		fm.Close()

		if write {
			if err := inst.markBlockBitmap(batEntry); err != nil {
				return err
			}
		}

		offset += toMove
		bufOff += int(toMove)
		remaining -= int(toMove)
	}
	return nil
}

func (inst *Instance) flushBAT() error {
	fm, err := inst.file.Map(int64(inst.header.TableOffset), int64(inst.bat.ByteSize()))
	if err != nil {
		return err
	}
	defer fm.Close()
	inst.bat.Encode(fm.Bytes())
	return nil
}

// markBlockBitmap sets one 0xF byte per eight sectors of the block's
// sector-presence bitmap, leaving the rest of the bitmap's 512-byte
// padding untouched. This reproduces, byte for byte, the original's
// update_block_bitmap loop (bytes++, sectors -= 8), which stops once
// sectors_in_block is exhausted rather than filling the whole padded
// region; see DESIGN.md.
func (inst *Instance) markBlockBitmap(batEntry uint32) error {
	bitmapSize := inst.header.BitmapSize()
	fm, err := inst.file.Map(int64(batEntry)*512, int64(bitmapSize))
	if err != nil {
		return err
	}
	defer fm.Close()
	b := fm.Bytes()
	sectors := int(inst.header.SectorsPerBlock())
	for i := 0; i < len(b) && sectors > 0; i++ {
		b[i] = 0xF
		sectors -= 8
	}
	return nil
}

// extend grows the file by one block's worth of bitmap+data, migrates
// the footer to the new end of file, and returns the sector offset of
// the newly allocated block. Not transactional: a crash between growing
// the file and the caller registering the block in the BAT leaves the
// space allocated but unreferenced, never corrupt.
func (inst *Instance) extend() (uint32, error) {
	old, err := inst.file.Size()
	if err != nil {
		return 0, err
	}
	blockTotal := uint64(inst.header.BlockSize) + inst.header.BitmapSize()
	newSize := old + blockTotal

	if err := inst.file.SetSize(newSize); err != nil {
		return 0, err
	}

	// The new block occupies the sectors formerly holding the footer;
	// the footer is rewritten at the new end of file.
	blockSectorOffset := uint32((old - FooterSize) / 512)

	if err := inst.writeFooterAt(int64(newSize) - FooterSize); err != nil {
		return 0, err
	}
	// Zero the old footer location, now embedded inside the data region.
	if err := inst.zeroRange(int64(old)-FooterSize, FooterSize); err != nil {
		return 0, err
	}

	inst.fileSize = newSize
	return blockSectorOffset, nil
}

func (inst *Instance) writeFooterAt(offset int64) error {
	fm, err := inst.file.Map(offset, FooterSize)
	if err != nil {
		return err
	}
	defer fm.Close()
	encoded := inst.footer.Encode()
	copy(fm.Bytes(), encoded[:])
	return nil
}

func (inst *Instance) zeroRange(offset int64, length int64) error {
	fm, err := inst.file.Map(offset, length)
	if err != nil {
		return err
	}
	defer fm.Close()
	clear(fm.Bytes())
	return nil
}
