package vhd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleHeaderBytes() [HeaderSize]byte {
	var buf [HeaderSize]byte
	copy(buf[0:8], []byte("cxsparse"))
	writeU64Test(buf[8:16], 0xFFFFFFFFFFFFFFFF)
	writeU64Test(buf[16:24], 1536)
	buf[24], buf[25], buf[26], buf[27] = 0, 1, 0, 0
	writeU32Test(buf[28:32], 4)
	writeU32Test(buf[32:36], 0x200000)
	checksum := ^sumAll(buf[:], 36, 40)
	writeU32Test(buf[36:40], checksum)
	return buf
}

func writeU32Test(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func writeU64Test(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}

func TestNewHeaderRoundTrip(t *testing.T) {
	h := NewHeader(sampleHeaderBytes(), nil)
	if !h.Status().OK() {
		t.Fatalf("expected OK status, got %v", h.Status())
	}
	if h.MaxTableEntries != 4 {
		t.Fatalf("MaxTableEntries = %d, want 4", h.MaxTableEntries)
	}
	if h.BlockSize != 0x200000 {
		t.Fatalf("BlockSize = %#x, want 0x200000", h.BlockSize)
	}
	if got, want := h.SectorsPerBlock(), uint32(0x200000/512); got != want {
		t.Fatalf("SectorsPerBlock() = %d, want %d", got, want)
	}
	if got, want := h.BitmapSize(), uint64(512); got != want {
		t.Fatalf("BitmapSize() = %d, want %d", got, want)
	}

	encoded := h.Encode()
	roundTripped := NewHeader(encoded, nil)
	if diff := cmp.Diff(h.MaxTableEntries, roundTripped.MaxTableEntries); diff != "" {
		t.Fatalf("MaxTableEntries mismatch (-want +got):\n%s", diff)
	}
	if !roundTripped.Status().OK() {
		t.Fatalf("round-tripped header failed validation: %v", roundTripped.Status())
	}
}

func TestHeaderBadCookie(t *testing.T) {
	buf := sampleHeaderBytes()
	buf[0] = 'x'
	h := NewHeader(buf, nil)
	if h.Status()&HeaderBadCookie == 0 {
		t.Fatalf("expected HeaderBadCookie, got %v", h.Status())
	}
}
