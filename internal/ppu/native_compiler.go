//go:build unix

package ppu

import (
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
)

// NativeCompiler is an optional dlopened third-party BlockCompiler: a
// single capability, selected at init time alongside SoftCompiler,
// wrapping a native JIT engine the host may or may not have installed.
// If the shared library can't be opened or doesn't export the expected
// symbol, every Compile call reports ok=false and blocks fall back to
// SoftCompiler or the interpreter -- that fallback is always valid.
//
// The library contract: pxs3c_ppu_try_compile(start_pc, words, count)
// returns either 0 (decline) or a function pointer matching
// the unified signature: fn(gpr*, fpr*, vr*, pc, lr, cr) → next_pc.
type NativeCompiler struct {
	sink   diag.Sink
	tryFn  func(startPC uint64, words *uint32, count uintptr) uintptr
	loaded bool
}

// NewNativeCompiler attempts to dlopen libraryPath and bind its
// pxs3c_ppu_try_compile symbol. A zero-value NativeCompiler (loaded ==
// false) is always safe to use: Compile just declines every block.
func NewNativeCompiler(libraryPath string, sink diag.Sink) *NativeCompiler {
	if sink == nil {
		sink = diag.Noop{}
	}
	nc := &NativeCompiler{sink: sink}
	if libraryPath == "" {
		return nc
	}

	handle, err := purego.Dlopen(libraryPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		sink.Warnf("ppu", "native compiler: dlopen %s failed: %v (falling back)", libraryPath, err)
		return nc
	}

	var tryCompile func(startPC uint64, words *uint32, count uintptr) uintptr
	purego.RegisterLibFunc(&tryCompile, handle, "pxs3c_ppu_try_compile")
	nc.tryFn = tryCompile
	nc.loaded = true
	return nc
}

// Compile implements BlockCompiler. The native engine, if loaded, is
// asked to translate the block into a raw function pointer; zero means
// it declined, just like SoftCompiler declining on an unmapped
// instruction. A non-zero pointer is invoked directly on every call via
// purego.SyscallN, passing the GPR/FPR/VR arrays by address plus PC/LR/CR
// by value, per the unified BlockCompiler signature.
func (nc *NativeCompiler) Compile(startPC uint64, words []uint32) (NativeBlock, bool) {
	if !nc.loaded || len(words) == 0 {
		return nil, false
	}
	fn := nc.tryFn(startPC, &words[0], uintptr(len(words)))
	if fn == 0 {
		return nil, false
	}

	return func(ctx *Context) uint64 {
		gprPtr := uintptr(unsafe.Pointer(&ctx.GPR[0]))
		fprPtr := uintptr(unsafe.Pointer(&ctx.FPR[0]))
		vrPtr := uintptr(unsafe.Pointer(&ctx.VR[0]))
		next, _, _ := purego.SyscallN(fn, gprPtr, fprPtr, vrPtr, uintptr(ctx.PC), uintptr(ctx.LR), uintptr(ctx.CR))
		return uint64(next)
	}, true
}
