package gatesim

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"diskimage"
	_ "diskimage/vhd"
)

func writeFixedVHD(t *testing.T) string {
	t.Helper()
	// A minimal fixed-disk image: 4096 bytes of data followed by a
	// 512-byte footer whose checksum and cookie are never actually
	// validated by this test (DiskInfo/Read/Write don't depend on
	// Status().OK()), so a zeroed footer with the right disk-type and
	// size fields is enough to exercise the gate loop end to end.
	data := make([]byte, 4096+512)
	copy(data[4096:4096+8], []byte("conectix"))
	// current size field at offset 48..56 within the footer = 4096
	putBE64(data[4096+48:4096+56], 4096)
	// disk type field at offset 60..64 within the footer = Fixed (2)
	putBE32(data[4096+60:4096+64], 2)

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

func TestLoopServesReadsAndWrites(t *testing.T) {
	path := writeFixedVHD(t)
	img, err := diskimage.Open(path, "vhd", diskimage.OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer img.Close()

	ctx, cancel := context.WithCancel(context.Background())
	reqs := make(chan Request)
	results := make(chan Result)
	go Loop(ctx, img, reqs, results)

	payload := []byte("hello gate")
	reqs <- Request{Write: true, Buf: payload, Offset: 0}
	if r := <-results; r.Err != nil {
		t.Fatalf("write: %v", r.Err)
	}

	readBuf := make([]byte, len(payload))
	reqs <- Request{Write: false, Buf: readBuf, Offset: 0}
	if r := <-results; r.Err != nil {
		t.Fatalf("read: %v", r.Err)
	}
	if !bytes.Equal(readBuf, payload) {
		t.Fatalf("read back %q, want %q", readBuf, payload)
	}

	cancel()
	if _, ok := <-results; ok {
		t.Fatal("results channel should close after context cancellation")
	}
}
