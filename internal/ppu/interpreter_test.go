package ppu

import (
	"testing"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
	"github.com/nikitaolenych123-coder/pxs3c/internal/syscalls"
)

func newTestInterpreter(t *testing.T) (*Interpreter, *memory.Manager) {
	t.Helper()
	mem := memory.New(diag.Noop{})
	if _, err := mem.Map(0x100, 0x1000, memory.FlagRead|memory.FlagWrite|memory.FlagExec); err != nil {
		t.Fatalf("Map: %v", err)
	}
	sys := syscalls.New(mem, diag.Noop{})
	return New(mem, sys, diag.Noop{}), mem
}

// TestAddi is scenario 2: addi r3,r3,1 at pc=0x100 with r3=5
// initially leaves r3=6 and pc=0x104.
func TestAddi(t *testing.T) {
	interp, mem := newTestInterpreter(t)
	if err := mem.WriteU32(0x100, 0x38630001); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	interp.Context().PC = 0x100
	interp.Context().GPR[3] = 5

	if _, err := interp.ExecuteBlock(1); err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if interp.Context().GPR[3] != 6 {
		t.Fatalf("r3 = %d, want 6", interp.Context().GPR[3])
	}
	if interp.Context().PC != 0x104 {
		t.Fatalf("pc = 0x%X, want 0x104", interp.Context().PC)
	}
}

// TestBranchUnconditional is scenario 3's first half: b +16
// (LK=0) at pc=0x200 lands at pc=0x210 and leaves LR untouched.
func TestBranchUnconditional(t *testing.T) {
	interp, mem := newTestInterpreter(t)
	if err := mem.WriteU32(0x200, 0x48000010); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	interp.Context().PC = 0x200
	interp.Context().LR = 0xDEAD

	if _, err := interp.ExecuteBlock(1); err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if interp.Context().PC != 0x210 {
		t.Fatalf("pc = 0x%X, want 0x210", interp.Context().PC)
	}
	if interp.Context().LR != 0xDEAD {
		t.Fatalf("LR = 0x%X, want unchanged 0xDEAD", interp.Context().LR)
	}
}

// TestBranchAndLink is scenario 3's second half: bl +16 at
// pc=0x200 lands at pc=0x210 and sets LR=0x204.
func TestBranchAndLink(t *testing.T) {
	interp, mem := newTestInterpreter(t)
	if err := mem.WriteU32(0x200, 0x48000011); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	interp.Context().PC = 0x200

	if _, err := interp.ExecuteBlock(1); err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if interp.Context().PC != 0x210 {
		t.Fatalf("pc = 0x%X, want 0x210", interp.Context().PC)
	}
	if interp.Context().LR != 0x204 {
		t.Fatalf("LR = 0x%X, want 0x204", interp.Context().LR)
	}
}

// TestSyscallDispatch is scenario 4: r0=205
// (sys_memory_get_user_memory_size), after sc, r3 == 0x10000000.
func TestSyscallDispatch(t *testing.T) {
	interp, mem := newTestInterpreter(t)
	if err := mem.WriteU32(0x100, 0x44000002); err != nil { // sc
		t.Fatalf("WriteU32: %v", err)
	}
	interp.Context().PC = 0x100
	interp.Context().GPR[0] = 205

	if _, err := interp.ExecuteBlock(1); err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if interp.Context().GPR[3] != 0x10000000 {
		t.Fatalf("r3 = 0x%X, want 0x10000000", interp.Context().GPR[3])
	}
}

func TestIllegalInstructionHalts(t *testing.T) {
	interp, mem := newTestInterpreter(t)
	// Primary opcode 2 is unassigned in this interpreter.
	if err := mem.WriteU32(0x100, 0x08000000); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	interp.Context().PC = 0x100

	if _, err := interp.ExecuteBlock(1); err == nil {
		t.Fatal("expected an error for an illegal instruction")
	}
	if !interp.Context().Halted {
		t.Fatal("Halted was not set")
	}
}

func TestAndLogical(t *testing.T) {
	interp, mem := newTestInterpreter(t)
	// and r5,r3,r4 -> xop 28, primary 31: 0x7C(rt=3)(ra=5)(rb=4)(xop28<<1)
	// encode manually via bit helpers for clarity instead of a magic literal
	word := uint32(31)<<26 | uint32(3)<<21 | uint32(5)<<16 | uint32(4)<<11 | uint32(28)<<1
	if err := mem.WriteU32(0x100, word); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	interp.Context().PC = 0x100
	interp.Context().GPR[3] = 0xFF00
	interp.Context().GPR[4] = 0x0FF0

	if _, err := interp.ExecuteBlock(1); err != nil {
		t.Fatalf("ExecuteBlock: %v", err)
	}
	if interp.Context().GPR[5] != 0x0F00 {
		t.Fatalf("r5 = 0x%X, want 0x0F00", interp.Context().GPR[5])
	}
}
