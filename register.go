package diskimage

// Importing this package pulls in every built-in format driver: each
// registers itself by name in internal/ldi's registry from its own
// init(), the same "static set, read-only after startup" contract the
// original expressed with a linker set.
import (
	_ "diskimage/vhd"
	_ "diskimage/vmdk"
)
