package vmdk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"diskimage/internal/ldi"
)

func writeTestVMDK(t *testing.T, extentData []byte) string {
	t.Helper()
	dir := t.TempDir()

	extentPath := filepath.Join(dir, "disk-flat.vmdk")
	if err := os.WriteFile(extentPath, extentData, 0o644); err != nil {
		t.Fatalf("WriteFile extent: %v", err)
	}

	descriptor := "version=1\n" +
		"CID=00000000\n" +
		"parentCID=ffffffff\n" +
		"createType=\"monolithicFlat\"\n" +
		`RW ` + "8" + ` FLAT "disk-flat.vmdk" 0` + "\n"

	descPath := filepath.Join(dir, "disk.vmdk")
	if err := os.WriteFile(descPath, []byte(descriptor), 0o644); err != nil {
		t.Fatalf("WriteFile descriptor: %v", err)
	}
	return descPath
}

func TestInstanceReadFromExtent(t *testing.T) {
	extentData := bytes.Repeat([]byte{0x55}, 8*512)
	path := writeTestVMDK(t, extentData)

	inst, err := Construct(path, ldi.OpenOptions{})
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	defer inst.Close()

	if got, want := inst.DiskInfo().DiskSize, uint64(8*512); got != want {
		t.Fatalf("DiskSize = %d, want %d", got, want)
	}

	buf := make([]byte, 512)
	if err := inst.Read(buf, 0); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(buf, extentData[:512]) {
		t.Fatalf("read data does not match extent contents")
	}
}

func TestInstanceWriteIsNoOp(t *testing.T) {
	extentData := bytes.Repeat([]byte{0x11}, 8*512)
	path := writeTestVMDK(t, extentData)

	inst, err := Construct(path, ldi.OpenOptions{})
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	defer inst.Close()

	payload := bytes.Repeat([]byte{0xFF}, 512)
	if err := inst.Write(payload, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}

	readBack := make([]byte, 512)
	if err := inst.Read(readBack, 0); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(readBack, extentData[:512]) {
		t.Fatalf("Write mutated the extent; expected a silent no-op")
	}
}
