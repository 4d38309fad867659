package memory

import (
	"errors"
	"testing"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
)

// TestWriteReadU32RoundTrip is scenario 1: writing 0xDEADBEEF at
// main RAM base and reading it back must return the same value, and the
// raw bytes on "disk" must be big-endian (DE AD BE EF).
func TestWriteReadU32RoundTrip(t *testing.T) {
	m := New(diag.Noop{})
	if _, err := m.Map(MainRAMBase, MainRAMSize, FlagRead|FlagWrite); err != nil {
		t.Fatalf("Map: %v", err)
	}

	if err := m.WriteU32(MainRAMBase, 0xDEADBEEF); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	got, err := m.ReadU32(MainRAMBase)
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Fatalf("ReadU32 = 0x%X, want 0xDEADBEEF", got)
	}

	raw := make([]byte, 4)
	if err := m.Read(MainRAMBase, raw); err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("raw bytes = %X, want %X (big-endian)", raw, want)
		}
	}
}

func TestSwapIsInvolutive(t *testing.T) {
	if swap32(swap32(0x12345678)) != 0x12345678 {
		t.Fatal("swap32(swap32(v)) != v")
	}
	if swap16(swap16(0xABCD)) != 0xABCD {
		t.Fatal("swap16(swap16(v)) != v")
	}
	if swap64(swap64(0x0102030405060708)) != 0x0102030405060708 {
		t.Fatal("swap64(swap64(v)) != v")
	}
}

func TestMapOverlapRejected(t *testing.T) {
	m := New(diag.Noop{})
	if _, err := m.Map(0x1000, 0x1000, FlagRead|FlagWrite); err != nil {
		t.Fatalf("first Map: %v", err)
	}
	_, err := m.Map(0x1800, 0x1000, FlagRead|FlagWrite)
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("Map overlap error = %v, want ErrOverlap", err)
	}
}

func TestReadWithinMappedRegionNeverUnmapped(t *testing.T) {
	m := New(diag.Noop{})
	if _, err := m.Map(0x2000, 0x1000, FlagRead|FlagWrite); err != nil {
		t.Fatalf("Map: %v", err)
	}
	dst := make([]byte, 16)
	if err := m.Read(0x2000, dst); err != nil {
		t.Fatalf("Read inside mapped region returned error: %v", err)
	}
}

func TestUnmappedReadMaterializesOnDemand(t *testing.T) {
	m := New(diag.Noop{})
	v, err := m.ReadU32(0x50000000)
	if err != nil {
		t.Fatalf("ReadU32 of undeclared address should materialize, got: %v", err)
	}
	if v != 0 {
		t.Fatalf("fresh on-demand page should read zero, got 0x%X", v)
	}
	regions := m.DumpRegions()
	if len(regions) != 1 {
		t.Fatalf("expected exactly one on-demand region, got %d", len(regions))
	}
	if regions[0].Size != onDemandAlignment {
		t.Fatalf("on-demand region size = 0x%X, want 0x%X", regions[0].Size, onDemandAlignment)
	}
}

func TestUnmappedWriteFails(t *testing.T) {
	m := New(diag.Noop{})
	err := m.WriteU32(0x60000000, 1)
	if !errors.Is(err, ErrUnmapped) {
		t.Fatalf("write to undeclared address = %v, want ErrUnmapped", err)
	}
}

func TestProtectionFlags(t *testing.T) {
	m := New(diag.Noop{})
	if _, err := m.Map(0x3000, 0x1000, FlagRead); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if err := m.WriteU8(0x3000, 1); !errors.Is(err, ErrProtection) {
		t.Fatalf("write to RO region = %v, want ErrProtection", err)
	}
}

func TestOutOfBounds(t *testing.T) {
	m := New(diag.Noop{})
	if _, err := m.Map(0x4000, 0x10, FlagRead|FlagWrite); err != nil {
		t.Fatalf("Map: %v", err)
	}
	dst := make([]byte, 32)
	if err := m.Read(0x4000, dst); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("out-of-bounds read = %v, want ErrOutOfBounds", err)
	}
}

func TestUnmapRemovesRegion(t *testing.T) {
	m := New(diag.Noop{})
	if _, err := m.Map(0x5000, 0x1000, FlagRead|FlagWrite); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if err := m.Unmap(0x5000); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
	if err := m.WriteU8(0x5000, 1); !errors.Is(err, ErrUnmapped) {
		t.Fatalf("write after unmap = %v, want ErrUnmapped", err)
	}
}
