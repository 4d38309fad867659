package spu

import (
	"golang.org/x/sync/errgroup"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
)

// UnitCount is the fixed fleet size: 1-of-6 SPUs.
const UnitCount = 6

// Fleet owns six SPUUnits in a fixed array and advances them either
// sequentially or in parallel.
type Fleet struct {
	Units [UnitCount]*Unit
	sink  diag.Sink
}

// NewFleet allocates all six units.
func NewFleet(sink diag.Sink) *Fleet {
	if sink == nil {
		sink = diag.Noop{}
	}
	f := &Fleet{sink: sink}
	for i := 0; i < UnitCount; i++ {
		f.Units[i] = NewUnit(i, sink)
	}
	return f
}

// ExecuteAll advances unit 0, then 1, …, then 5, each for up to budget
// instructions.
func (f *Fleet) ExecuteAll(budget int) [UnitCount]int {
	var executed [UnitCount]int
	for i, u := range f.Units {
		executed[i] = u.ExecuteBlock(budget)
	}
	return executed
}

// ExecuteAllParallel runs each non-halted unit's ExecuteBlock on its own
// goroutine and joins all of them. No memory-manager access happens
// during SPU stepping in this core (local stores are self-contained),
// so no cross-unit synchronization is required inside a tick. A panic
// inside one unit's goroutine is recovered at that unit's boundary and
// turned into the unit halting with a logged diagnostic, so one bad
// unit can't take down the fleet or the errgroup join.
func (f *Fleet) ExecuteAllParallel(budget int) [UnitCount]int {
	var executed [UnitCount]int
	var g errgroup.Group
	for i, u := range f.Units {
		i, u := i, u
		if u.Halted {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					f.sink.Errorf("spu", "unit %d panicked: %v", u.ID, r)
					u.Halted = true
				}
			}()
			executed[i] = u.ExecuteBlock(budget)
			return nil
		})
	}
	_ = g.Wait() // ExecuteBlock never returns an error; Wait only joins.
	return executed
}

// UnitSnapshot is one unit's serialized state for debugging.
type UnitSnapshot struct {
	ID     int
	PC     uint32
	Halted bool
	Regs   [RegisterCount]Register
}

// DumpAllRegisters serializes per-unit state for debugging.
func (f *Fleet) DumpAllRegisters() [UnitCount]UnitSnapshot {
	var snap [UnitCount]UnitSnapshot
	for i, u := range f.Units {
		snap[i] = UnitSnapshot{ID: u.ID, PC: u.PC, Halted: u.Halted, Regs: u.Regs}
	}
	return snap
}
