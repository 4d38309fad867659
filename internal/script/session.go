// Package script exposes the embedding API from to Lua test
// harnesses, via gopher-lua. A scripted harness drives the same
// Init/Load/TickFrame/Shutdown sequence a native embedder would, from a
// .lua file instead of Go.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/orchestrator"
)

// Session owns an *lua.LState bound to a single Emulator and satisfies
// orchestrator.ScriptSession, so Emulator.Shutdown can close it.
type Session struct {
	emu  *orchestrator.Emulator
	sink diag.Sink
	L    *lua.LState
}

// NewSession constructs a fresh Lua state with the emulator's embedding
// API installed as globals, then loads and runs path to completion.
func NewSession(emu *orchestrator.Emulator, sink diag.Sink, path string) (*Session, error) {
	if sink == nil {
		sink = diag.Noop{}
	}
	s := &Session{emu: emu, sink: sink, L: lua.NewState()}
	s.install()

	if err := s.L.DoFile(path); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("script: loading %s: %w", path, err)
	}
	return s, nil
}

// Close releases the Lua state. Safe to call more than once.
func (s *Session) Close() error {
	if s.L == nil {
		return nil
	}
	s.L.Close()
	s.L = nil
	return nil
}

// CallFrameHook invokes the Lua global fn name (e.g. "on_frame") if it is
// defined, passing no arguments and discarding any return value. It is a
// no-op if fn is undefined, so scripts only need to define the hooks
// they actually use.
func (s *Session) CallFrameHook(name string) error {
	fn, ok := s.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		return fmt.Errorf("script: %s: %w", name, err)
	}
	return nil
}

// install registers every embedding-API call names as a Lua
// global function bound to s.emu.
func (s *Session) install() {
	reg := func(name string, fn lua.LGFunction) { s.L.SetGlobal(name, s.L.NewFunction(fn)) }

	reg("init", func(L *lua.LState) int {
		err := s.emu.Init()
		L.Push(lua.LBool(err == nil))
		return 1
	})
	reg("load", func(L *lua.LState) int {
		path := L.CheckString(1)
		err := s.emu.Load(path)
		if err != nil {
			s.sink.Warnf("script", "load(%q) failed: %v", path, err)
		}
		L.Push(lua.LBool(err == nil))
		return 1
	})
	reg("tick_frame", func(L *lua.LState) int {
		err := s.emu.TickFrame()
		L.Push(lua.LBool(err == nil))
		return 1
	})
	reg("run_frame", func(L *lua.LState) int {
		err := s.emu.RunFrame()
		L.Push(lua.LBool(err == nil))
		return 1
	})
	reg("frame_count", func(L *lua.LState) int {
		L.Push(lua.LNumber(s.emu.FrameCount()))
		return 1
	})
	reg("set_target_fps", func(L *lua.LState) int {
		s.emu.SetTargetFPS(uint32(L.CheckNumber(1)))
		return 0
	})
	reg("set_clear_color", func(L *lua.LState) int {
		r, g, b, a := float32(L.CheckNumber(1)), float32(L.CheckNumber(2)), float32(L.CheckNumber(3)), float32(L.CheckNumber(4))
		s.emu.SetClearColor(r, g, b, a)
		return 0
	})
	reg("set_vsync", func(L *lua.LState) int {
		s.emu.SetVsync(L.CheckBool(1))
		return 0
	})
	reg("attach_surface", func(L *lua.LState) int {
		handle := uintptr(L.CheckNumber(1))
		err := s.emu.AttachSurface(handle)
		L.Push(lua.LBool(err == nil))
		return 1
	})
	reg("read_u32", func(L *lua.LState) int {
		addr := uint64(L.CheckNumber(1))
		v, err := s.emu.Memory().ReadU32(addr)
		if err != nil {
			s.sink.Warnf("script", "read_u32(0x%X) failed: %v", addr, err)
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(v))
		return 1
	})
	reg("write_u32", func(L *lua.LState) int {
		addr := uint64(L.CheckNumber(1))
		value := uint32(L.CheckNumber(2))
		err := s.emu.Memory().WriteU32(addr, value)
		L.Push(lua.LBool(err == nil))
		return 1
	})
	reg("gpr", func(L *lua.LState) int {
		idx := L.CheckInt(1)
		if idx < 0 || idx > 31 {
			L.ArgError(1, "gpr index out of range [0,31]")
			return 0
		}
		L.Push(lua.LNumber(s.emu.PPU().Context().GPR[idx]))
		return 1
	})
	reg("log", func(L *lua.LState) int {
		s.sink.Logf("script", "%s", L.CheckString(1))
		return 0
	})
}
