// Package syscalls dispatches LV1 (hypervisor) and LV2 (kernel) calls
// raised by the PPU's sc instruction.
package syscalls

import (
	"fmt"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
)

// lv1Base is the call-number offset separating LV2 (kernel) calls,
// numbered below it, from LV1 (hypervisor) calls, numbered at or above
// it and normalized back down by subtracting lv1Base before lookup.
const lv1Base = 512

// Context is the register window a syscall handler sees: arguments in
// r3..r10 as the guest ABI passes them, and a single return slot the
// handler fills in for r3 on return.
type Context struct {
	R3, R4, R5, R6, R7, R8, R9, R10 uint64

	ReturnValue uint64
	Handled     bool
}

// Handler services one call number. It mutates Context in place rather
// than returning a value so that multi-result calls (e.g. ones that also
// write a secondary result to guest memory) aren't forced into a tuple.
type Handler func(ctx *Context, mem *memory.Manager) error

// Dispatcher holds the call-number tables for the running process.
type Dispatcher struct {
	mem  *memory.Manager
	sink diag.Sink

	lv2 map[uint32]Handler
	lv1 map[uint32]Handler

	names map[uint32]string

	nextPID   uint32
	nextAlloc uint64
}

// New constructs a Dispatcher over mem and registers the baseline LV1/LV2
// call set every guest process needs to reach sys_memory_get_user_memory_size
// and exit cleanly.
func New(mem *memory.Manager, sink diag.Sink) *Dispatcher {
	if sink == nil {
		sink = diag.Noop{}
	}
	d := &Dispatcher{
		mem:       mem,
		sink:      sink,
		lv2:       make(map[uint32]Handler),
		lv1:       make(map[uint32]Handler),
		names:     make(map[uint32]string),
		nextPID:   1,
		nextAlloc: memory.UserPoolBase,
	}
	d.registerBuiltins()
	return d
}

// Register installs or replaces the handler for call number n. Call
// numbers >= lv1Base are LV1 (hypervisor) calls; below it, LV2 (kernel).
func (d *Dispatcher) Register(n uint32, name string, h Handler) {
	d.names[n] = name
	if n >= lv1Base {
		d.lv1[n-lv1Base] = h
		return
	}
	d.lv2[n] = h
}

// Name returns the registered name for call number n, or "" if unknown.
func (d *Dispatcher) Name(n uint32) string {
	return d.names[n]
}

// Dispatch services the syscall numbered n, as raised by an sc
// instruction with n in the guest's syscall-number register.
func (d *Dispatcher) Dispatch(n uint32, ctx *Context) error {
	table, lookup, kind := d.lv2, n, "lv2"
	if n >= lv1Base {
		table, lookup, kind = d.lv1, n-lv1Base, "lv1"
	}
	h, ok := table[lookup]
	if !ok {
		d.sink.Warnf("syscalls", "unhandled %s call %d (%s)", kind, n, d.names[n])
		ctx.Handled = false
		return nil
	}
	if err := h(ctx, d.mem); err != nil {
		return fmt.Errorf("syscalls: %s call %d (%s): %w", kind, n, d.names[n], err)
	}
	ctx.Handled = true
	return nil
}
