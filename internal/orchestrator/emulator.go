// Package orchestrator wires the memory manager, executable loader,
// syscall dispatcher, PPU interpreter/JIT cache, SPU fleet, RSX command
// stream/processor, and a renderer into a single embeddable emulator
// core, and exposes the embedding API native and scripted hosts drive
// it through.
package orchestrator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/loader"
	"github.com/nikitaolenych123-coder/pxs3c/internal/memory"
	"github.com/nikitaolenych123-coder/pxs3c/internal/ppu"
	"github.com/nikitaolenych123-coder/pxs3c/internal/renderer"
	"github.com/nikitaolenych123-coder/pxs3c/internal/rsx"
	"github.com/nikitaolenych123-coder/pxs3c/internal/spu"
	"github.com/nikitaolenych123-coder/pxs3c/internal/syscalls"
)

// perFramePPUBudget and perFrameSPUBudget cap how many PPU and SPU
// instructions TickFrame retires per call, so a runaway guest program
// can't block the host's frame loop indefinitely.
const (
	perFramePPUBudget = 1000
	perFrameSPUBudget = 500
)

// ScriptSession is the lifecycle surface AttachScript needs from a
// scripted test harness session; internal/script's Session satisfies
// this without orchestrator importing script (which itself imports
// orchestrator), avoiding an import cycle.
type ScriptSession interface {
	Close() error
}

// Emulator is the top-level embeddable emulator core: one instance
// owns an entire guest's memory, CPU, SPU fleet, and GPU pipeline.
type Emulator struct {
	cfg  EmulatorConfig
	sink diag.Sink

	mem    *memory.Manager
	ld     *loader.Loader
	sys    *syscalls.Dispatcher
	interp *ppu.Interpreter
	jit    *ppu.Cache
	fleet  *spu.Fleet
	stream *rsx.Stream
	proc   *rsx.Processor
	render rsx.Renderer

	script ScriptSession

	frameCount  uint64
	initialized bool
}

// New only records configuration. Init does the actual component
// wiring, so a failed Init leaves no half-built subsystem for the
// caller to accidentally use.
func New(cfg EmulatorConfig, sink diag.Sink) *Emulator {
	if sink == nil {
		sink = diag.Noop{}
	}
	return &Emulator{cfg: cfg, sink: sink}
}

// Init builds every component in dependency order: memory manager,
// then syscall dispatcher and PPU (both need memory), then the SPU
// fleet, then the RSX stream and renderer, then the RSX processor
// (needs the renderer), then the loader (needs memory). Failure at
// any step aborts init and reports which component failed.
func (e *Emulator) Init() error {
	e.mem = memory.New(e.sink)
	if err := e.mapStandardRegions(); err != nil {
		return fmt.Errorf("orchestrator: init memory: %w", err)
	}

	e.sys = syscalls.New(e.mem, e.sink)

	e.interp = ppu.New(e.mem, e.sys, e.sink)
	compiler := e.buildCompiler()
	e.jit = ppu.NewCache(e.interp, e.mem, compiler, e.sink)

	e.fleet = spu.NewFleet(e.sink)

	capacity := e.cfg.RSXStreamCapacity
	if capacity <= 0 {
		capacity = 1 << 16
	}
	e.stream = rsx.NewStream(capacity)

	r, err := renderer.New(e.cfg.RendererBackend, e.cfg.Width, e.cfg.Height, e.cfg.WindowTitle, e.sink)
	if err != nil {
		return fmt.Errorf("orchestrator: init Renderer: %w", err)
	}
	e.render = r
	e.render.SetClearColor(e.cfg.ClearR, e.cfg.ClearG, e.cfg.ClearB, e.cfg.ClearA)

	e.proc = rsx.NewProcessor(e.render, e.sink)
	e.proc.State.Width, e.proc.State.Height = e.cfg.Width, e.cfg.Height
	e.proc.State.ViewportWidth, e.proc.State.ViewportHeight = e.cfg.Width, e.cfg.Height

	e.ld = loader.New(e.mem, e.sink, nil, nil)

	e.initialized = true
	e.sink.Logf("orchestrator", "init complete: renderer=%s %dx%d", e.cfg.RendererBackend, e.cfg.Width, e.cfg.Height)
	return nil
}

func (e *Emulator) buildCompiler() ppu.BlockCompiler {
	soft := &ppu.SoftCompiler{}
	if e.cfg.NativeCompilerPath == "" {
		return soft
	}
	native := ppu.NewNativeCompiler(e.cfg.NativeCompilerPath, e.sink)
	return ppu.ChainCompiler{Compilers: []ppu.BlockCompiler{native, soft}}
}

// mapStandardRegions declares the regions Load never populates itself:
// the user-mode heap/stack pool and the RSX command buffer window. Main
// RAM is deliberately left undeclared here -- Load's ELF/SELF path maps
// each PT_LOAD segment at its own vaddr, and mapping the whole main RAM
// span up front would collide with that per-segment Map call.
func (e *Emulator) mapStandardRegions() error {
	if _, err := e.mem.Map(memory.UserPoolBase, memory.UserPoolSize, memory.FlagRead|memory.FlagWrite); err != nil {
		return err
	}
	if _, err := e.mem.Map(memory.GraphicsBase, memory.GraphicsSize, memory.FlagRead|memory.FlagWrite); err != nil {
		return err
	}
	return nil
}

// Load rejects .pkg/.iso outright, then dispatches to the SELF or
// plain-ELF path by magic via the loader, and sets PPU.PC to the
// loader's entry point on success.
func (e *Emulator) Load(path string) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pkg", ".iso":
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	desc, err := e.ld.Load(path)
	if err != nil {
		e.sink.Errorf("orchestrator", "load %s failed: %v", path, err)
		return err
	}
	e.interp.Context().PC = desc.Entry
	e.jit.Clear()
	return nil
}

// TickFrame runs one frame: a bounded PPU block, an SPU fleet step,
// an RSX command drain, then a renderer draw.
func (e *Emulator) TickFrame() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if _, err := e.jit.Advance(perFramePPUBudget); err != nil {
		e.sink.Errorf("orchestrator", "ppu halted: %v", err)
	}

	if e.cfg.ParallelSPU {
		e.fleet.ExecuteAllParallel(perFrameSPUBudget)
	} else {
		e.fleet.ExecuteAll(perFrameSPUBudget)
	}

	e.proc.Process(e.stream)

	if err := e.render.DrawFrame(); err != nil {
		return fmt.Errorf("orchestrator: draw_frame: %w", err)
	}
	e.frameCount++
	return nil
}

// RunFrame is an alias for TickFrame, for hosts that prefer that name.
func (e *Emulator) RunFrame() error { return e.TickFrame() }

// Shutdown releases the script session, if any. The core holds no
// other OS resources that need explicit release.
func (e *Emulator) Shutdown() error {
	if e.script != nil {
		return e.script.Close()
	}
	return nil
}

// AttachSurface binds a native window handle to the renderer, for
// hosts that present into their own window rather than an offscreen
// buffer.
func (e *Emulator) AttachSurface(handle uintptr) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	return e.render.AttachSurface(handle)
}

// SetTargetFPS records the pacer's target; the core itself does not
// sleep between TickFrame calls, leaving pacing to the embedder.
func (e *Emulator) SetTargetFPS(fps uint32) { e.cfg.TargetFPS = fps }

// TargetFPS returns the current pacer target.
func (e *Emulator) TargetFPS() uint32 { return e.cfg.TargetFPS }

// SetClearColor updates both the RSXProcessor's DrawState and the
// Renderer directly, so it takes effect even before any RSX command
// streams through.
func (e *Emulator) SetClearColor(r, g, b, a float32) {
	e.cfg.ClearR, e.cfg.ClearG, e.cfg.ClearB, e.cfg.ClearA = r, g, b, a
	if e.render != nil {
		e.render.SetClearColor(r, g, b, a)
	}
	if e.proc != nil {
		e.proc.State.ClearR, e.proc.State.ClearG, e.proc.State.ClearB, e.proc.State.ClearA = r, g, b, a
	}
}

// SetVsync records the vsync preference for embedders that pace
// themselves off it; the software renderer has no vsync of its own.
func (e *Emulator) SetVsync(enabled bool) { e.cfg.VSync = enabled }

// AttachScript wires a scripted test harness session to this
// emulator, so Shutdown can close it automatically.
func (e *Emulator) AttachScript(session ScriptSession) { e.script = session }

// Diagnostics exposes the sink every component logs through, for test
// harnesses that want to assert on emitted diagnostics.
func (e *Emulator) Diagnostics() diag.Sink { return e.sink }

// Memory, PPU, SPUFleet, and RSX accessors, mainly for test harnesses
// that need to poke at internal state directly.
func (e *Emulator) Memory() *memory.Manager   { return e.mem }
func (e *Emulator) PPU() *ppu.Interpreter     { return e.interp }
func (e *Emulator) JitCache() *ppu.Cache      { return e.jit }
func (e *Emulator) SPUFleet() *spu.Fleet      { return e.fleet }
func (e *Emulator) RSXStream() *rsx.Stream    { return e.stream }
func (e *Emulator) RSXProcessor() *rsx.Processor { return e.proc }
func (e *Emulator) Renderer() rsx.Renderer    { return e.render }

// FrameCount reports how many TickFrame calls have completed.
func (e *Emulator) FrameCount() uint64 { return e.frameCount }
