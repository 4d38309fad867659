package orchestrator

// EmulatorConfig gathers everything New needs to stand up a core
// instance, taking host-supplied configuration instead of reading it
// from disk itself.
type EmulatorConfig struct {
	// RendererBackend selects renderer.New's backend name: "software",
	// "ebiten", "vulkan", or "" for the default (software).
	RendererBackend string
	Width, Height   int
	WindowTitle     string

	TargetFPS   uint32
	ParallelSPU bool
	VSync       bool

	ClearR, ClearG, ClearB, ClearA float32

	// RSXStreamCapacity sizes the command FIFO's backing buffer; 0 uses
	// a sensible default.
	RSXStreamCapacity int

	// NativeCompilerPath, if set, is dlopened as an optional native
	// BlockCompiler ahead of the always-available SoftCompiler. Empty
	// means software-only JIT.
	NativeCompilerPath string
}

// DefaultConfig returns sane defaults matching the memory map
// and a 640x480 software-rendered display.
func DefaultConfig() EmulatorConfig {
	return EmulatorConfig{
		RendererBackend:   "software",
		Width:             640,
		Height:            480,
		WindowTitle:       "pxs3c",
		TargetFPS:         60,
		ClearA:            1,
		RSXStreamCapacity: 1 << 16,
	}
}
