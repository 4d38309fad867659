// Package rsx implements the RSX graphics command FIFO and its
// translation to an abstract Renderer.
package rsx

// PrimitiveKind names the primitive topology a draw intent submits.
type PrimitiveKind int

const (
	PrimitivePoints PrimitiveKind = iota
	PrimitiveLines
	PrimitiveTriangles
	PrimitiveQuads
)

// Vertex is a single vertex of a draw intent: position plus color.
type Vertex struct {
	X, Y, Z    float32
	R, G, B, A float32
}

// Renderer is the abstract sink RSXProcessor drains command intents
// into. Every concrete backend (software, Ebiten, Vulkan) implements
// this; RSXProcessor never depends on a concrete backend.
type Renderer interface {
	SetClearColor(r, g, b, a float32)
	DrawFrame() error
	AttachSurface(handle uintptr) error
	Resize(width, height int) error
	SetViewport(x, y, width, height int)
	SetScissor(x, y, width, height int)
	SetBlend(srcFactor, dstFactor, equation uint32)
	SetCullEnabled(enabled bool)
	SubmitPrimitive(kind PrimitiveKind, vertices []Vertex) error
}
