package vmdk

import (
	"regexp"
	"strconv"

	"diskimage/internal/ldi"
)

// Access is the extent's access restriction.
type Access int

const (
	AccessRW Access = iota
	AccessRDONLY
	AccessNOACCESS
)

var accessNames = map[string]Access{
	"RW":       AccessRW,
	"RDONLY":   AccessRDONLY,
	"NOACCESS": AccessNOACCESS,
}

// ExtentType is the extent's storage backing.
type ExtentType int

const (
	ExtentFlat ExtentType = iota
	ExtentSparse
	ExtentZero
	ExtentVMFS
	ExtentVMFSSparse
	ExtentVMFSRDM
	ExtentVMFSRaw
)

var extentTypeNames = map[string]ExtentType{
	"FLAT":       ExtentFlat,
	"SPARSE":     ExtentSparse,
	"ZERO":       ExtentZero,
	"VMFS":       ExtentVMFS,
	"VMFSSPARSE": ExtentVMFSSparse,
	"VMFSRDM":    ExtentVMFSRDM,
	"VMFSRAW":    ExtentVMFSRaw,
}

// Extent is one parsed extent-description line:
//
//	ACCESS SIZE TYPE "FILENAME"[ OFFSET]
type Extent struct {
	Access   Access
	Sectors  uint64
	Type     ExtentType
	Filename string
	Offset   uint64
}

var extentPattern = regexp.MustCompile(`^([^ ]+) ([0-9]+) ([^ ]+) "([^"]*)"(?: ([0-9]*))?`)

// ParseExtent parses a single extent-description line.
func ParseExtent(line string) (*Extent, error) {
	m := extentPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, ldi.ParseErrorf("vmdk: malformed extent description %q", line)
	}

	access, ok := accessNames[m[1]]
	if !ok {
		return nil, ldi.ParseErrorf("vmdk: unknown extent access %q", m[1])
	}

	sectors, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return nil, ldi.ParseErrorf("vmdk: invalid extent size %q: %w", m[2], err)
	}

	extentType, ok := extentTypeNames[m[3]]
	if !ok {
		return nil, ldi.ParseErrorf("vmdk: unknown extent type %q", m[3])
	}

	e := &Extent{
		Access:   access,
		Sectors:  sectors,
		Type:     extentType,
		Filename: m[4],
	}
	if len(m) > 5 && m[5] != "" {
		offset, err := strconv.ParseUint(m[5], 10, 64)
		if err != nil {
			return nil, ldi.ParseErrorf("vmdk: invalid extent offset %q: %w", m[5], err)
		}
		e.Offset = offset
	}
	return e, nil
}
