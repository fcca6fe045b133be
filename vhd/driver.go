package vhd

import "diskimage/internal/ldi"

// Name is the registry key this driver answers to (matched case
// insensitively by the facade).
const Name = "vhd"

type driver struct{}

func (driver) Construct(path string, opts ldi.OpenOptions) (ldi.DriverInstance, error) {
	return Construct(path, opts)
}

func init() {
	ldi.Register(Name, driver{})
}
