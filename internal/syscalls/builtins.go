package syscalls

import (
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
)

// LV2 kernel call numbers actually exercised by test scenarios
// and the minimal process lifecycle. Real firmware assigns many more;
// this table carries the ones this emulator services.
const (
	lv2Exit                       = 1
	lv2ProcessGetPID              = 2
	lv2ProcessExit                = 3
	lv2ProcessPrxLoadModule       = 4
	lv2ProcessPrxStartModule      = 5
	lv2SysMemoryAllocate          = 200
	lv2SysMemoryFree              = 201
	lv2SysMemoryGetUserMemorySize = 205
)

// LV1 hypervisor call numbers (wire values; Register normalizes them by
// lv1Base before storing).
const (
	lv1GetVersion = 512 + 1
)

func (d *Dispatcher) registerBuiltins() {
	d.Register(lv2Exit, "exit", handleExit)
	d.Register(lv2ProcessGetPID, "process_getpid", d.handleProcessGetPID)
	d.Register(lv2ProcessExit, "process_exit", handleExit)
	d.Register(lv2ProcessPrxLoadModule, "process_prx_load_module", handlePrxLoadModule)
	d.Register(lv2ProcessPrxStartModule, "process_prx_start_module", handlePrxStartModule)
	d.Register(lv2SysMemoryAllocate, "sys_memory_allocate", d.handleMemoryAllocate)
	d.Register(lv2SysMemoryFree, "sys_memory_free", handleMemoryFree)
	d.Register(lv2SysMemoryGetUserMemorySize, "sys_memory_get_user_memory_size", handleGetUserMemorySize)

	d.Register(lv1GetVersion, "lv1_get_version", handleLV1GetVersion)
}

func handleExit(ctx *Context, mem *memory.Manager) error {
	ctx.ReturnValue = 0
	return nil
}

func (d *Dispatcher) handleProcessGetPID(ctx *Context, mem *memory.Manager) error {
	ctx.ReturnValue = uint64(d.nextPID)
	return nil
}

// handlePrxLoadModule and handlePrxStartModule are stubs: this emulator
// loads the single main executable through internal/loader directly and
// doesn't yet resolve dynamically-loaded PRX modules. They report
// success with a synthetic non-zero handle so callers that merely probe
// for the module's presence don't immediately fault.
func handlePrxLoadModule(ctx *Context, mem *memory.Manager) error {
	ctx.ReturnValue = 1
	return nil
}

func handlePrxStartModule(ctx *Context, mem *memory.Manager) error {
	ctx.ReturnValue = 0
	return nil
}

// handleMemoryAllocate hands out a stub address from a monotonic bump
// counter seeded at the user pool base. The guest passes the requested
// size in r3 and, optionally, an out-pointer in r5 to receive the
// allocated address; r3 on return also carries the address, matching
// how real sys_memory_allocate reports success.
func (d *Dispatcher) handleMemoryAllocate(ctx *Context, mem *memory.Manager) error {
	addr := d.nextAlloc
	d.nextAlloc += ctx.R3
	if ctx.R5 != 0 {
		if err := mem.WriteU64(ctx.R5, addr); err != nil {
			return err
		}
	}
	ctx.ReturnValue = addr
	return nil
}

// handleMemoryFree is a no-op: the bump allocator never reclaims, so
// there is nothing to release. It still reports success so userland
// allocator libraries compiled into guest binaries don't trip over
// ENOSYS.
func handleMemoryFree(ctx *Context, mem *memory.Manager) error {
	ctx.ReturnValue = 0
	return nil
}

// handleGetUserMemorySize answers scenario 4 literally: call
// 205 must return the user memory pool size in r3.
func handleGetUserMemorySize(ctx *Context, mem *memory.Manager) error {
	ctx.ReturnValue = memory.UserPoolSize
	return nil
}

// handleLV1GetVersion reports a synthetic hypervisor version; no guest
// code this emulator targets branches on the exact value.
func handleLV1GetVersion(ctx *Context, mem *memory.Manager) error {
	ctx.ReturnValue = 0x0003006000000000 // major=3 minor=60, firmware-style encoding
	return nil
}
