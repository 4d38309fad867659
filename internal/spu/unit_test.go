package spu

import (
	"encoding/binary"
	"testing"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
)

func encodeRR(opcode, rt, ra, rb uint32) uint32 {
	return opcode<<24 | (rt&0x7F)<<17 | (ra&0x7F)<<10 | (rb&0x7F)<<3
}

func encodeRI10(opcode, rt, ra uint32, imm int32) uint32 {
	return opcode<<24 | (rt&0x7F)<<17 | (ra&0x7F)<<10 | (uint32(imm) & 0x3FF)
}

func encodeRI17(opcode, rt, imm uint32) uint32 {
	return opcode<<24 | (rt&0x7F)<<17 | (imm & 0x1FFFF)
}

// TestImmediateLoadAndStore is scenario 5: il r1,0x1234;
// stqd r1,0(r2) with r2=0, after execute_block(2) local store bytes
// [0x00..0x10) hold the big-endian encoding of {0x1234, 0, 0, 0}.
func TestImmediateLoadAndStore(t *testing.T) {
	u := NewUnit(0, diag.Noop{})

	il := encodeRI17(opIL, 1, 0x1234)
	stqd := encodeRI10(opSTQD, 1, 2, 0)

	var program [8]byte
	binary.BigEndian.PutUint32(program[0:4], il)
	binary.BigEndian.PutUint32(program[4:8], stqd)
	if err := u.LoadProgram(program[:]); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	u.Regs[2] = Register{0, 0, 0, 0} // r2 = 0, the "(r2)" base

	executed := u.ExecuteBlock(2)
	if executed != 2 {
		t.Fatalf("executed %d instructions, want 2", executed)
	}

	want := []byte{0x00, 0x00, 0x12, 0x34, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	got := u.LocalStore[0:16]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LocalStore[0:16] = %X, want %X", got, want)
		}
	}
}

func TestArithmeticAddAndSubtract(t *testing.T) {
	u := NewUnit(0, diag.Noop{})
	u.Regs[1] = Register{10, 20, 30, 40}
	u.Regs[2] = Register{1, 2, 3, 4}

	program := make([]byte, 8)
	binary.BigEndian.PutUint32(program[0:4], encodeRR(opA, 3, 1, 2))
	binary.BigEndian.PutUint32(program[4:8], encodeRR(opS, 4, 2, 1))
	if err := u.LoadProgram(program); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	u.ExecuteBlock(2)
	want3 := Register{11, 22, 33, 44}
	if u.Regs[3] != want3 {
		t.Fatalf("r3 = %+v, want %+v", u.Regs[3], want3)
	}
	// s rt,ra,rb computes rt = rb - ra.
	want4 := Register{9, 18, 27, 36}
	if u.Regs[4] != want4 {
		t.Fatalf("r4 = %+v, want %+v", u.Regs[4], want4)
	}
}

func TestOutOfBoundsAccessLogsAndContinues(t *testing.T) {
	u := NewUnit(0, diag.Noop{})
	// r3 holds a base address 8 bytes short of the local store's end;
	// a zero-offset quadword store from there overruns by 8 bytes.
	u.Regs[3] = Register{uint32(len(u.LocalStore) - 8), 0, 0, 0}
	program := make([]byte, 4)
	binary.BigEndian.PutUint32(program[0:4], encodeRI10(opSTQD, 1, 3, 0))
	if err := u.LoadProgram(program); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	executed := u.ExecuteBlock(1)
	if executed != 1 {
		t.Fatalf("executed = %d, want 1 (out-of-bounds access must not halt)", executed)
	}
	if u.Halted {
		t.Fatal("unit halted on an out-of-bounds access; spec requires log+continue")
	}
}

func TestPCPastEndHalts(t *testing.T) {
	u := NewUnit(0, diag.Noop{})
	u.PC = uint32(len(u.LocalStore))

	executed := u.ExecuteBlock(1)
	if executed != 0 {
		t.Fatalf("executed = %d, want 0", executed)
	}
	if !u.Halted {
		t.Fatal("unit should halt when PC runs past local store end")
	}
}

func TestBranchAndLink(t *testing.T) {
	u := NewUnit(0, diag.Noop{})
	program := make([]byte, 4)
	binary.BigEndian.PutUint32(program[0:4], encodeRI17(opBRSL, 5, 0x40))
	if err := u.LoadProgram(program); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	u.ExecuteBlock(1)
	if u.PC != 0x40 {
		t.Fatalf("PC = 0x%X, want 0x40", u.PC)
	}
	if u.Regs[5][0] != 4 {
		t.Fatalf("link register word0 = %d, want 4", u.Regs[5][0])
	}
}
