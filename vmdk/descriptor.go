// Package vmdk implements the VMDK descriptor-file driver: a text
// key=value format referencing one or more extent files, of which only
// the first is consulted (see DESIGN.md for the multi-extent non-goal).
package vmdk

import (
	"strconv"

	"diskimage/internal/ldi"
)

// FileType enumerates the VMDK "createType" values.
type FileType int

const (
	MonolithicSparse FileType = iota
	VMFSSparse
	MonolithicFlat
	VMFS
	TwoGbMaxExtentSparse
	TwoGbMaxExtentFlat
	FullDevice
	VMFSRaw
	PartitionedDevice
	VMFSRawDeviceMap
	VMFSPassthroughRawDeviceMap
	StreamOptimized
)

var fileTypeNames = map[string]FileType{
	"monolithicSparse":           MonolithicSparse,
	"vmfsSparse":                 VMFSSparse,
	"monolithicFlat":             MonolithicFlat,
	"vmfs":                       VMFS,
	"twoGbMaxExtentSparse":       TwoGbMaxExtentSparse,
	"twoGbMaxExtentFlat":         TwoGbMaxExtentFlat,
	"fullDevice":                 FullDevice,
	"vmfsRaw":                    VMFSRaw,
	"partitionedDevice":          PartitionedDevice,
	"vmfsRawDeviceMap":           VMFSRawDeviceMap,
	"vmfsPassthroughRawDeviceMap": VMFSPassthroughRawDeviceMap,
	"streamOptimized":            StreamOptimized,
}

// Descriptor is the parsed form of a VMDK descriptor file.
type Descriptor struct {
	Version   uint16
	CID       uint32
	ParentCID uint32
	FileType  FileType
	Extents   []Extent
}

// keyValue is one tokenized line: a key (possibly empty, meaning "this
// line is an extent description") and its value, quotes already
// stripped.
type keyValue struct {
	key   string
	value string
}

// parserState mirrors the original's character-by-character state
// machine; ported directly rather than reimplemented with strings.Split
// so the exact "leading blank lines are skipped, not line-counted"
// behavior is preserved.
type parserState int

const (
	stateBeforeKey parserState = iota
	stateKey
	stateBeforeValue
	stateValue
)

// nextKeyValue parses from data up to (and including) the next newline,
// returning the decoded key/value pair and the number of bytes consumed
// including the newline. If no '=' is found, the whole span is the
// value and the key is empty.
func nextKeyValue(data []byte) (kv keyValue, consumed int) {
	state := stateBeforeKey
	var keyStart, keyEnd, valueStart, valueEnd int
	i := 0
	for i < len(data) && (state == stateBeforeKey || data[i] != '\n') {
		c := data[i]
		switch c {
		case ' ', '\t', '\n':
			// whitespace; no state transition
		case '=':
			if state == stateKey {
				// keyEnd already points just past the key's last
				// non-whitespace character, so blanks before '=' are dropped.
				state = stateBeforeValue
			}
		default:
			if state == stateBeforeKey {
				state = stateKey
				keyStart = i
			} else if state == stateBeforeValue {
				state = stateValue
				valueStart = i
			}
			if state == stateKey {
				keyEnd = i + 1
			} else if state == stateValue {
				valueEnd = i + 1
			}
		}
		i++
	}

	if state == stateKey {
		// No '=' in the line: the whole thing is the value.
		valueStart, valueEnd = keyStart, keyEnd
		keyStart, keyEnd = 0, 0
		kv.key = ""
	} else {
		kv.key = string(data[keyStart:keyEnd])
	}
	kv.value = string(data[valueStart:valueEnd])

	// Strip a single layer of surrounding double quotes.
	if len(kv.value) >= 2 && kv.value[0] == '"' && kv.value[len(kv.value)-1] == '"' {
		kv.value = kv.value[1 : len(kv.value)-1]
	}

	if i < len(data) && data[i] == '\n' {
		i++
	}
	return kv, i
}

// Parse decodes a VMDK descriptor file's text content.
func Parse(source []byte) (*Descriptor, error) {
	d := &Descriptor{}
	data := source
	for len(data) > 0 {
		kv, consumed := nextKeyValue(data)
		data = data[consumed:]

		if kv.key == "" && (kv.value == "" || kv.value[0] == '#') {
			continue
		}

		var err error
		switch kv.key {
		case "version":
			err = d.handleVersion(kv.value)
		case "CID":
			err = d.handleCID(kv.value)
		case "parentCID":
			err = d.handleParentCID(kv.value)
		case "createType":
			err = d.handleCreateType(kv.value)
		case "":
			err = d.handleExtent(kv.value)
		default:
			// Unrecognized keys (ddb.* metadata, etc) are skipped, same
			// as the original's handler table lookup miss.
		}
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Descriptor) handleVersion(value string) error {
	v, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return ldi.ParseErrorf("vmdk: invalid version %q: %w", value, err)
	}
	d.Version = uint16(v)
	return nil
}

func (d *Descriptor) handleCID(value string) error {
	v, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return ldi.ParseErrorf("vmdk: invalid CID %q: %w", value, err)
	}
	d.CID = uint32(v)
	return nil
}

func (d *Descriptor) handleParentCID(value string) error {
	v, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return ldi.ParseErrorf("vmdk: invalid parentCID %q: %w", value, err)
	}
	d.ParentCID = uint32(v)
	return nil
}

func (d *Descriptor) handleCreateType(value string) error {
	ft, ok := fileTypeNames[value]
	if !ok {
		return ldi.NewError(ldi.FileNotSupported, nil)
	}
	d.FileType = ft
	return nil
}

func (d *Descriptor) handleExtent(value string) error {
	e, err := ParseExtent(value)
	if err != nil {
		return err
	}
	d.Extents = append(d.Extents, *e)
	return nil
}
