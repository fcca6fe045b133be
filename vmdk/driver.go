package vmdk

import (
	"path/filepath"

	"diskimage/internal/ldi"
)

// Name is the registry key this driver answers to.
const Name = "vmdk"

type driver struct{}

func (driver) Construct(path string, opts ldi.OpenOptions) (ldi.DriverInstance, error) {
	return Construct(path, opts)
}

func init() {
	ldi.Register(Name, driver{})
}

// Instance is the live, opened handle to a VMDK descriptor and its first
// (and only consulted) extent file.
type Instance struct {
	descriptorFile *ldi.File
	descriptor     *Descriptor

	extentFile *ldi.File
	extent     Extent

	log ldi.Logger
}

// Construct reads and parses the descriptor at path, then opens the
// first extent it names, resolved relative to the descriptor's own
// directory. Only the first extent is ever consulted; a multi-extent
// VMDK's later extents are addressed the same as the original: not at
// all (see DESIGN.md).
func Construct(path string, opts ldi.OpenOptions) (*Instance, error) {
	log := opts.Logger
	if log == nil {
		log = ldi.NopLogger()
	}
	log = log.WithField("component", "vmdk").WithField("path", path)

	descFile, err := ldi.OpenFile(path, opts)
	if err != nil {
		return nil, err
	}

	size, err := descFile.Size()
	if err != nil {
		descFile.Close()
		return nil, err
	}
	descMap, err := descFile.Map(0, int64(size))
	if err != nil {
		descFile.Close()
		return nil, err
	}
	source := make([]byte, size)
	copy(source, descMap.Bytes())
	descMap.Close()

	descriptor, err := Parse(source)
	if err != nil {
		descFile.Close()
		return nil, err
	}
	if len(descriptor.Extents) == 0 {
		descFile.Close()
		return nil, ldi.NewError(ldi.ParseError, nil)
	}
	extent := descriptor.Extents[0]

	if extent.Type == ExtentZero {
		// A ZERO extent has no backing file; reads synthesize zeros and
		// writes are discarded the same as every other VMDK write.
		return &Instance{descriptorFile: descFile, descriptor: descriptor, extent: extent, log: log}, nil
	}

	extentPath := extent.Filename
	if !filepath.IsAbs(extentPath) {
		extentPath = filepath.Join(descFile.Directory(), extentPath)
	}
	extentFile, err := ldi.OpenFile(extentPath, opts)
	if err != nil {
		descFile.Close()
		return nil, err
	}

	return &Instance{
		descriptorFile: descFile,
		descriptor:     descriptor,
		extentFile:     extentFile,
		extent:         extent,
		log:            log,
	}, nil
}

// DiskInfo reports the first extent's sector count, converted to bytes.
func (inst *Instance) DiskInfo() ldi.DiskInfo {
	return ldi.DiskInfo{DiskSize: inst.extent.Sectors * 512}
}

// Close releases the descriptor file and, if one was opened, the
// extent's backing file.
func (inst *Instance) Close() error {
	var err error
	if inst.extentFile != nil {
		err = inst.extentFile.Close()
	}
	if cerr := inst.descriptorFile.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Read copies from the extent's backing file, or synthesizes zeros for
// a ZERO extent. The extent's parsed Offset field is retained for
// fidelity but, like the original, never consulted here -- off maps
// straight onto the backing file.
func (inst *Instance) Read(buf []byte, off int64) error {
	if inst.extentFile == nil {
		clear(buf)
		return nil
	}
	fm, err := inst.extentFile.Map(off, int64(len(buf)))
	if err != nil {
		return err
	}
	defer fm.Close()
	copy(buf, fm.Bytes())
	return nil
}

// Write is a silent no-op: this engine never modifies a VMDK's backing
// extent, only reads it. Preserved as observed rather than treated as a
// bug to fix (see DESIGN.md).
func (inst *Instance) Write(buf []byte, off int64) error {
	return nil
}
