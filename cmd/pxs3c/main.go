// Command pxs3c runs a ROM/ELF image against the emulator core headlessly
// or windowed, optionally driven by a Lua script for scripted test runs.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/orchestrator"
	"github.com/nikitaolenych123-coder/pxs3c/internal/script"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		romPath     string
		renderer    string
		width       int
		height      int
		fps         uint
		parallel    bool
		scriptPath  string
		frameLimit  uint
		clearColor  string
		vsync       bool
		nativeJIT   string
	)

	flagSet := flag.NewFlagSet("pxs3c", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&romPath, "rom", "", "path to an ELF or SELF image to load")
	flagSet.StringVar(&renderer, "renderer", "software", "renderer backend: software, ebiten, or vulkan")
	flagSet.IntVar(&width, "width", 640, "framebuffer width")
	flagSet.IntVar(&height, "height", 480, "framebuffer height")
	flagSet.UintVar(&fps, "fps", 60, "target frames per second")
	flagSet.BoolVar(&parallel, "parallel-spu", false, "run the SPU fleet's units concurrently")
	flagSet.StringVar(&scriptPath, "script", "", "optional Lua script driving the run")
	flagSet.UintVar(&frameLimit, "frames", 0, "stop after this many frames when no script is given (0 = exit right after init and load)")
	flagSet.StringVar(&clearColor, "clear", "000000FF", "clear color as RRGGBBAA hex")
	flagSet.BoolVar(&vsync, "vsync", false, "request vsync from the renderer backend")
	flagSet.StringVar(&nativeJIT, "native-jit", "", "path to an optional native BlockCompiler shared library")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: pxs3c -rom path/to/image.elf [flags]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		statusf("error: %v\n", err)
		return 1
	}

	r, g, b, a, err := parseClearColor(clearColor)
	if err != nil {
		statusf("error: -clear %q: %v\n", clearColor, err)
		return 1
	}

	cfg := orchestrator.DefaultConfig()
	cfg.RendererBackend = renderer
	cfg.Width, cfg.Height = width, height
	cfg.TargetFPS = uint32(fps)
	cfg.ParallelSPU = parallel
	cfg.VSync = vsync
	cfg.ClearR, cfg.ClearG, cfg.ClearB, cfg.ClearA = r, g, b, a
	cfg.NativeCompilerPath = nativeJIT

	sink := diag.NewStderr()
	emu := orchestrator.New(cfg, sink)
	if err := emu.Init(); err != nil {
		statusf("error: init failed: %v\n", err)
		return 1
	}
	defer emu.Shutdown()

	if romPath != "" {
		if err := emu.Load(romPath); err != nil {
			sink.Errorf("pxs3c", "load %s failed: %v", romPath, err)
		}
	}

	if scriptPath != "" {
		session, err := script.NewSession(emu, sink, scriptPath)
		if err != nil {
			statusf("error: script failed: %v\n", err)
			return 1
		}
		emu.AttachScript(session)
		statusOK("ran %s to completion (%d frames)", scriptPath, emu.FrameCount())
		return 0
	}

	if frameLimit == 0 {
		statusOK("loaded %s, no -frames limit and no -script given; exiting after init", romPath)
		return 0
	}
	for i := uint(0); i < frameLimit; i++ {
		if err := emu.TickFrame(); err != nil {
			sink.Errorf("pxs3c", "tick_frame: %v", err)
			break
		}
	}
	statusOK("ran %d frames", emu.FrameCount())
	return 0
}

func parseClearColor(hex string) (r, g, b, a float32, err error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 8 {
		return 0, 0, 0, 0, fmt.Errorf("expected 8 hex digits (RRGGBBAA), got %d", len(hex))
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	r = float32(byte(v>>24)) / 255
	g = float32(byte(v>>16)) / 255
	b = float32(byte(v>>8)) / 255
	a = float32(byte(v)) / 255
	return r, g, b, a, nil
}

// statusOK prints a completion line, colored green when stdout is a
// terminal and plain otherwise.
func statusOK(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("\x1b[32m%s\x1b[0m\n", msg)
		return
	}
	fmt.Println(msg)
}

func statusf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
