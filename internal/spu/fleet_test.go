package spu

import (
	"encoding/binary"
	"testing"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
)

func TestExecuteAllStepsEveryUnit(t *testing.T) {
	f := NewFleet(diag.Noop{})
	for _, u := range f.Units {
		program := make([]byte, 4)
		binary.BigEndian.PutUint32(program, encodeRI17(opIL, 1, 7))
		if err := u.LoadProgram(program); err != nil {
			t.Fatalf("LoadProgram: %v", err)
		}
	}

	executed := f.ExecuteAll(1)
	for i, n := range executed {
		if n != 1 {
			t.Fatalf("unit %d executed %d instructions, want 1", i, n)
		}
	}
	for i, u := range f.Units {
		if u.Regs[1][0] != 7 {
			t.Fatalf("unit %d r1[0] = %d, want 7", i, u.Regs[1][0])
		}
	}
}

func TestExecuteAllParallelMatchesSequential(t *testing.T) {
	fSeq := NewFleet(diag.Noop{})
	fPar := NewFleet(diag.Noop{})
	for _, f := range []*Fleet{fSeq, fPar} {
		for i, u := range f.Units {
			program := make([]byte, 4)
			binary.BigEndian.PutUint32(program, encodeRI17(opIL, 1, uint32(i+1)))
			if err := u.LoadProgram(program); err != nil {
				t.Fatalf("LoadProgram: %v", err)
			}
		}
	}

	fSeq.ExecuteAll(1)
	fPar.ExecuteAllParallel(1)

	for i := 0; i < UnitCount; i++ {
		if fSeq.Units[i].Regs[1][0] != fPar.Units[i].Regs[1][0] {
			t.Fatalf("unit %d diverged: sequential=%d parallel=%d", i, fSeq.Units[i].Regs[1][0], fPar.Units[i].Regs[1][0])
		}
	}
}

func TestDumpAllRegisters(t *testing.T) {
	f := NewFleet(diag.Noop{})
	snap := f.DumpAllRegisters()
	for i, s := range snap {
		if s.ID != i {
			t.Fatalf("snapshot %d has ID %d", i, s.ID)
		}
	}
}
