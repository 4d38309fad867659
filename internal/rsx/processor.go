package rsx

import (
	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
)

// DrawState is the RSXProcessor's persistent pipeline state, updated
// by the methods streamed through process().
type DrawState struct {
	Width, Height int

	ViewportX, ViewportY, ViewportWidth, ViewportHeight int
	ScissorX, ScissorY, ScissorWidth, ScissorHeight     int

	BlendSrc, BlendDst, BlendEquation uint32
	CullEnabled                      bool
	DepthTestEnabled                 bool

	ClearR, ClearG, ClearB, ClearA float32
	CurrentPrimitive               PrimitiveKind
}

// Processor drains an RSX command stream into Renderer calls,
// translating each method into a DrawState update or a draw call.
type Processor struct {
	State    DrawState
	Renderer Renderer
	sink     diag.Sink
}

// NewProcessor attaches a Processor to the Renderer it drains commands
// into.
func NewProcessor(r Renderer, sink diag.Sink) *Processor {
	if sink == nil {
		sink = diag.Noop{}
	}
	return &Processor{Renderer: r, sink: sink}
}

// Process drains every pending command from stream, dispatching each
// to the matching DrawState update and Renderer call.
func (p *Processor) Process(stream *Stream) {
	for {
		cmd, err := stream.Read()
		if err != nil {
			return
		}
		p.dispatch(cmd)
	}
}

func (p *Processor) dispatch(cmd Command) {
	switch cmd.Method {
	case MethodClearColor:
		p.handleClearColor(cmd)
	case MethodViewportOrigin:
		if len(cmd.Data) >= 2 {
			p.State.ViewportX = int(int32(cmd.Data[0]))
			p.State.ViewportY = int(int32(cmd.Data[1]))
		}
		p.applyViewport()
	case MethodViewportExtent:
		if len(cmd.Data) >= 2 {
			p.State.ViewportWidth = int(cmd.Data[0])
			p.State.ViewportHeight = int(cmd.Data[1])
		}
		p.applyViewport()
	case MethodScissorOrigin:
		if len(cmd.Data) >= 2 {
			p.State.ScissorX = int(int32(cmd.Data[0]))
			p.State.ScissorY = int(int32(cmd.Data[1]))
		}
		p.applyScissor()
	case MethodScissorExtent:
		if len(cmd.Data) >= 2 {
			p.State.ScissorWidth = int(cmd.Data[0])
			p.State.ScissorHeight = int(cmd.Data[1])
		}
		p.applyScissor()
	case MethodBlendFunc:
		if len(cmd.Data) >= 2 {
			p.State.BlendSrc = cmd.Data[0]
			p.State.BlendDst = cmd.Data[1]
			if p.Renderer != nil {
				p.Renderer.SetBlend(p.State.BlendSrc, p.State.BlendDst, p.State.BlendEquation)
			}
		} else {
			p.sink.Warnf("rsx", "BLEND_FUNC expects two data words, got %d", len(cmd.Data))
		}
	case MethodBlendEquation:
		if len(cmd.Data) >= 1 {
			p.State.BlendEquation = cmd.Data[0]
			if p.Renderer != nil {
				p.Renderer.SetBlend(p.State.BlendSrc, p.State.BlendDst, p.State.BlendEquation)
			}
		}
	case MethodCullFace:
		if len(cmd.Data) >= 1 {
			p.State.CullEnabled = cmd.Data[0] != cullFaceDisable
			if p.Renderer != nil {
				p.Renderer.SetCullEnabled(p.State.CullEnabled)
			}
		}
	case MethodBeginEnd:
		if len(cmd.Data) >= 1 {
			p.State.CurrentPrimitive = PrimitiveKind(cmd.Data[0])
		}
	case MethodWaitForIdle:
		// No-op.9; a real fence would block here.
	case MethodNotify:
		if len(cmd.Data) >= 1 {
			p.sink.Logf("rsx", "NOTIFY writeback address 0x%08X", cmd.Data[0])
		}
	default:
		p.sink.Warnf("rsx", "unknown method 0x%04X (%d data words)", cmd.Method, len(cmd.Data))
	}
}

func (p *Processor) handleClearColor(cmd Command) {
	if len(cmd.Data) < 1 {
		p.sink.Warnf("rsx", "CLEAR_COLOR expects one data word")
		return
	}
	packed := cmd.Data[0]
	r := float32(byte(packed>>24)) / 255.0
	g := float32(byte(packed>>16)) / 255.0
	b := float32(byte(packed>>8)) / 255.0
	a := float32(byte(packed)) / 255.0
	p.State.ClearR, p.State.ClearG, p.State.ClearB, p.State.ClearA = r, g, b, a
	if p.Renderer != nil {
		p.Renderer.SetClearColor(r, g, b, a)
	}
}

func (p *Processor) applyViewport() {
	if p.Renderer != nil {
		p.Renderer.SetViewport(p.State.ViewportX, p.State.ViewportY, p.State.ViewportWidth, p.State.ViewportHeight)
	}
}

func (p *Processor) applyScissor() {
	if p.Renderer != nil {
		p.Renderer.SetScissor(p.State.ScissorX, p.State.ScissorY, p.State.ScissorWidth, p.State.ScissorHeight)
	}
}

// DrawRectangle builds a two-triangle (quad) vertex intent from a
// pixel-space rectangle and color, and submits it to the Renderer.
func (p *Processor) DrawRectangle(x, y, width, height float32, r, g, b, a float32) error {
	if p.Renderer == nil {
		return nil
	}
	x0, y0 := x, y
	x1, y1 := x+width, y+height
	verts := []Vertex{
		{X: x0, Y: y0, Z: 0, R: r, G: g, B: b, A: a},
		{X: x1, Y: y0, Z: 0, R: r, G: g, B: b, A: a},
		{X: x1, Y: y1, Z: 0, R: r, G: g, B: b, A: a},
		{X: x0, Y: y1, Z: 0, R: r, G: g, B: b, A: a},
	}
	return p.Renderer.SubmitPrimitive(PrimitiveQuads, verts)
}

// DrawTriangle submits a single triangle intent built from three
// vertices, sharing one color.
func (p *Processor) DrawTriangle(v0, v1, v2 [2]float32, r, g, b, a float32) error {
	if p.Renderer == nil {
		return nil
	}
	verts := []Vertex{
		{X: v0[0], Y: v0[1], Z: 0, R: r, G: g, B: b, A: a},
		{X: v1[0], Y: v1[1], Z: 0, R: r, G: g, B: b, A: a},
		{X: v2[0], Y: v2[1], Z: 0, R: r, G: g, B: b, A: a},
	}
	return p.Renderer.SubmitPrimitive(PrimitiveTriangles, verts)
}

// DrawClearScreen fills the whole viewport with the current clear
// color via a full-viewport rectangle, for backends with no explicit
// clear primitive.
func (p *Processor) DrawClearScreen() error {
	w := float32(p.State.ViewportWidth)
	h := float32(p.State.ViewportHeight)
	if w <= 0 || h <= 0 {
		w, h = float32(p.State.Width), float32(p.State.Height)
	}
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return p.DrawRectangle(0, 0, w, h, p.State.ClearR, p.State.ClearG, p.State.ClearB, p.State.ClearA)
}
