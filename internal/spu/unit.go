// Package spu implements the SPU interpreter fleet: per-unit local
// stores, 128-entry 128-bit register files, and sequential/parallel
// stepping across all six units.
package spu

import (
	"encoding/binary"
	"fmt"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
)

const (
	// RegisterCount is the SPU's 128-entry register file width.
	RegisterCount = 128

	// PreferredLocalStoreSize is the nominal 256 KiB local store.
	PreferredLocalStoreSize = 256 * 1024

	// FallbackLocalStoreSize is used when the host refuses the
	// preferred allocation.
	FallbackLocalStoreSize = 64 * 1024
)

// Register is one 128-bit SPU register, represented as four 32-bit
// lanes, mirroring how the Altivec vector registers are modeled.
type Register [4]uint32

// Unit is one SPU core: its own register file and local store,
// independent of every other unit. id is recorded for diagnostics only.
type Unit struct {
	ID int

	Regs       [RegisterCount]Register
	LocalStore []byte
	PC         uint32

	Halted bool
	sink   diag.Sink
}

// NewUnit allocates a Unit's local store, preferring
// PreferredLocalStoreSize and falling back to FallbackLocalStoreSize if
// the host can't satisfy the larger request.
func NewUnit(id int, sink diag.Sink) *Unit {
	if sink == nil {
		sink = diag.Noop{}
	}
	store, size := allocateLocalStore(sink)
	u := &Unit{ID: id, LocalStore: store, sink: sink}
	if size != PreferredLocalStoreSize {
		sink.Warnf("spu", "unit %d: local store reduced to %d bytes", id, size)
	}
	return u
}

// allocateLocalStore attempts the preferred size first; an allocation
// failure (out of memory) is recovered and retried at the fallback
// size.
func allocateLocalStore(sink diag.Sink) (store []byte, size int) {
	defer func() {
		if r := recover(); r != nil {
			sink.Warnf("spu", "local store allocation at %d bytes failed (%v); retrying at %d", PreferredLocalStoreSize, r, FallbackLocalStoreSize)
			store = make([]byte, FallbackLocalStoreSize)
			size = FallbackLocalStoreSize
		}
	}()
	store = make([]byte, PreferredLocalStoreSize)
	size = PreferredLocalStoreSize
	return
}

// LoadProgram copies program into the local store starting at offset 0.
func (u *Unit) LoadProgram(program []byte) error {
	if len(program) > len(u.LocalStore) {
		return fmt.Errorf("spu: unit %d program (%d bytes) exceeds local store (%d bytes)", u.ID, len(program), len(u.LocalStore))
	}
	copy(u.LocalStore, program)
	return nil
}

// fetch reads the big-endian 32-bit word at PC.6: "the
// unit reads four bytes, byte-reverses to host-native, and decodes."
func (u *Unit) fetch() (uint32, bool) {
	if uint64(u.PC)+4 > uint64(len(u.LocalStore)) {
		return 0, false
	}
	return binary.BigEndian.Uint32(u.LocalStore[u.PC : u.PC+4]), true
}

// ExecuteBlock runs up to max instructions, stopping earlier if the
// unit halts (PC ran past the end of local store).
func (u *Unit) ExecuteBlock(max int) int {
	executed := 0
	for executed < max && !u.Halted {
		word, ok := u.fetch()
		if !ok {
			u.Halted = true
			u.sink.Warnf("spu", "unit %d: pc=0x%X past local store end; halting", u.ID, u.PC)
			break
		}
		u.execute(word)
		executed++
	}
	return executed
}

// boundsOK reports whether a quadword access at byte offset off is
// within [0, len(LocalStore)-16]. Out-of-bounds
// accesses fail silently: the caller logs and continues rather than
// halting.
func (u *Unit) boundsOK(off uint32) bool {
	return uint64(off)+16 <= uint64(len(u.LocalStore))
}
