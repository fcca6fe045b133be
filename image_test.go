package diskimage

import (
	"os"
	"path/filepath"
	"testing"

	_ "diskimage/vhd"
)

func writeFixedVHDFixture(t *testing.T, diskSize uint64) string {
	t.Helper()
	data := make([]byte, diskSize+512)
	copy(data[diskSize:diskSize+8], []byte("conectix"))
	putBE64(data[diskSize+48:diskSize+56], diskSize)
	putBE32(data[diskSize+60:diskSize+64], 2) // DiskTypeFixed

	path := filepath.Join(t.TempDir(), "fixed.vhd")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func putBE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}

func putBE32(b []byte, v uint32) {
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (24 - 8*i))
	}
}

func TestOpenUnknownFormat(t *testing.T) {
	path := writeFixedVHDFixture(t, 4096)
	_, err := Open(path, "bogus", OpenOptions{})
	if err == nil {
		t.Fatal("Open: expected error for unknown format name")
	}
	var ldiErr *Error
	if !asError(err, &ldiErr) || ldiErr.Kind != FormatUnknown {
		t.Fatalf("Open: expected FormatUnknown, got %v", err)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}

func TestOpenCaseInsensitiveFormatName(t *testing.T) {
	path := writeFixedVHDFixture(t, 4096)
	img, err := Open(path, "VHD", OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer img.Close()
	if got := img.Info().DiskSize; got != 4096 {
		t.Fatalf("DiskSize = %d, want 4096", got)
	}
}

func TestReadWriteOutOfRange(t *testing.T) {
	path := writeFixedVHDFixture(t, 4096)
	img, err := Open(path, "vhd", OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer img.Close()

	buf := make([]byte, 16)
	if err := img.Read(buf, 4090); err == nil {
		t.Fatal("Read: expected OutOfRange error for a span crossing disk size")
	} else if e, ok := err.(*Error); !ok || e.Kind != OutOfRange {
		t.Fatalf("Read: expected OutOfRange, got %v", err)
	}

	if err := img.Write(buf, -1); err == nil {
		t.Fatal("Write: expected OutOfRange error for a negative offset")
	}
}

func TestReadWriteInRange(t *testing.T) {
	path := writeFixedVHDFixture(t, 4096)
	img, err := Open(path, "vhd", OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer img.Close()

	payload := []byte("facade round trip")
	if err := img.Write(payload, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	readBack := make([]byte, len(payload))
	if err := img.Read(readBack, 0); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(readBack) != string(payload) {
		t.Fatalf("read back %q, want %q", readBack, payload)
	}
}
