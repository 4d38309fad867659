package orchestrator

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
)

// buildTestELF writes a minimal ELF64 big-endian PPC64 image with one
// PT_LOAD segment holding instrWords at vaddr, and returns the file
// path. The last word should be a branch (primary opcode 16/18/19) so
// JIT block discovery terminates inside the mapped segment instead of
// faulting past its end.
func buildTestELF(t *testing.T, vaddr uint64, instrWords ...uint32) string {
	t.Helper()
	const ehdrSize = 64
	const phdrSize = 56
	fileOff := uint64(ehdrSize + phdrSize)

	payload := make([]byte, 4*len(instrWords))
	for i, w := range instrWords {
		binary.BigEndian.PutUint32(payload[i*4:], w)
	}

	buf := make([]byte, fileOff+uint64(len(payload)))
	be := binary.BigEndian

	buf[0], buf[1], buf[2], buf[3] = 0x7F, 'E', 'L', 'F'
	buf[4] = 2 // EI_CLASS = 64-bit
	buf[5] = 2 // EI_DATA = big-endian
	buf[6] = 1 // EI_VERSION
	be.PutUint16(buf[16:18], 2)  // e_type = ET_EXEC
	be.PutUint16(buf[18:20], 21) // e_machine = PPC64
	be.PutUint32(buf[20:24], 1)  // e_version
	be.PutUint64(buf[24:32], vaddr)
	be.PutUint64(buf[32:40], ehdrSize) // e_phoff
	be.PutUint16(buf[54:56], phdrSize)
	be.PutUint16(buf[56:58], 1)

	ph := buf[ehdrSize : ehdrSize+phdrSize]
	be.PutUint32(ph[0:4], 1)  // p_type = PT_LOAD
	be.PutUint32(ph[4:8], 5)  // p_flags = PF_R|PF_X
	be.PutUint64(ph[8:16], fileOff)
	be.PutUint64(ph[16:24], vaddr)
	be.PutUint64(ph[32:40], uint64(len(payload)))
	be.PutUint64(ph[40:48], uint64(len(payload)))

	copy(buf[fileOff:], payload)

	path := filepath.Join(t.TempDir(), "test.elf")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func newTestEmulator(t *testing.T) *Emulator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RendererBackend = "software"
	cfg.Width, cfg.Height = 16, 16
	e := New(cfg, diag.Noop{})
	if err := e.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return e
}

func TestInitWiresEveryComponent(t *testing.T) {
	e := newTestEmulator(t)
	if e.Memory() == nil || e.PPU() == nil || e.JitCache() == nil || e.SPUFleet() == nil || e.RSXStream() == nil || e.RSXProcessor() == nil || e.Renderer() == nil {
		t.Fatal("Init left a component nil")
	}
}

func TestLoadRejectsPkgAndIso(t *testing.T) {
	e := newTestEmulator(t)
	for _, ext := range []string{".pkg", ".iso"} {
		path := filepath.Join(t.TempDir(), "game"+ext)
		if err := os.WriteFile(path, []byte("irrelevant"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := e.Load(path); err == nil {
			t.Fatalf("Load(%s) succeeded, want ErrUnsupportedFormat", path)
		}
	}
}

func TestLoadSetsEntryPointAndTickFrameRuns(t *testing.T) {
	e := newTestEmulator(t)
	const vaddr = memory.MainRAMBase + 0x100
	const addi = 0x38630001         // addi r3, r3, 1
	const branchToSelf = 0x48000000 // b . (infinite loop, ends the block)
	path := buildTestELF(t, vaddr, addi, branchToSelf)

	if err := e.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e.PPU().Context().PC != vaddr {
		t.Fatalf("PC = 0x%X, want 0x%X", e.PPU().Context().PC, vaddr)
	}

	if err := e.TickFrame(); err != nil {
		t.Fatalf("TickFrame: %v", err)
	}
	if e.PPU().Context().GPR[3] != 1 {
		t.Fatalf("r3 = %d, want 1", e.PPU().Context().GPR[3])
	}
	if e.FrameCount() != 1 {
		t.Fatalf("FrameCount() = %d, want 1", e.FrameCount())
	}
}

func TestSetClearColorUpdatesProcessorState(t *testing.T) {
	e := newTestEmulator(t)
	e.SetClearColor(0.5, 0.25, 0.125, 1)
	if e.RSXProcessor().State.ClearR != 0.5 {
		t.Fatalf("DrawState.ClearR = %v, want 0.5", e.RSXProcessor().State.ClearR)
	}
}

func TestOperationsBeforeInitFail(t *testing.T) {
	e := New(DefaultConfig(), diag.Noop{})
	if err := e.TickFrame(); err == nil {
		t.Fatal("TickFrame before Init should fail")
	}
	if err := e.Load("whatever.elf"); err == nil {
		t.Fatal("Load before Init should fail")
	}
}

func TestShutdownClosesAttachedScript(t *testing.T) {
	e := newTestEmulator(t)
	closed := false
	e.AttachScript(closingScript(func() error { closed = true; return nil }))
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !closed {
		t.Fatal("Shutdown did not close the attached script session")
	}
}

type closingScript func() error

func (c closingScript) Close() error { return c() }
