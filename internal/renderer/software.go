// Package renderer implements rsx.Renderer backends: a pure-Go software
// rasterizer, an Ebiten-backed windowed output, and a Vulkan-accelerated
// output that falls back to the software path when no driver is present.
package renderer

import (
	"fmt"
	"sync"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/rsx"
)

// Software rasterizes rsx draw intents into an RGBA color buffer using
// barycentric triangle fill.
type Software struct {
	mu sync.RWMutex

	width, height int
	color         []byte // RGBA8, row-major

	viewportX, viewportY, viewportW, viewportH int
	scissorX, scissorY, scissorW, scissorH     int
	scissorSet                                 bool

	blendSrc, blendDst, blendEquation uint32
	cullEnabled                       bool

	clearR, clearG, clearB, clearA float32

	sink diag.Sink
}

var _ rsx.Renderer = (*Software)(nil)

// NewSoftware allocates a width x height RGBA color buffer.
func NewSoftware(width, height int, sink diag.Sink) *Software {
	s := &Software{sink: sink}
	s.resize(width, height)
	return s
}

func (s *Software) resize(width, height int) {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	s.width, s.height = width, height
	s.color = make([]byte, width*height*4)
	s.viewportW, s.viewportH = width, height
	s.scissorX, s.scissorY, s.scissorW, s.scissorH = 0, 0, width, height
}

// Frame returns the current RGBA8 color buffer; callers must not retain
// it across a Resize.
func (s *Software) Frame() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

// Dimensions reports the current buffer size.
func (s *Software) Dimensions() (width, height int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

func (s *Software) SetClearColor(r, g, b, a float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearR, s.clearG, s.clearB, s.clearA = r, g, b, a
}

// DrawFrame clears the buffer to the current clear color. A real
// display surface blits Frame() itself; the software backend has none.
func (s *Software) DrawFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := byte(clamp01(s.clearR) * 255)
	g := byte(clamp01(s.clearG) * 255)
	b := byte(clamp01(s.clearB) * 255)
	a := byte(clamp01(s.clearA) * 255)
	for i := 0; i < len(s.color); i += 4 {
		s.color[i+0] = r
		s.color[i+1] = g
		s.color[i+2] = b
		s.color[i+3] = a
	}
	return nil
}

// AttachSurface is a no-op: the software backend owns no native window.
func (s *Software) AttachSurface(handle uintptr) error { return nil }

func (s *Software) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("renderer: invalid dimensions %dx%d", width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resize(width, height)
	return nil
}

func (s *Software) SetViewport(x, y, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewportX, s.viewportY, s.viewportW, s.viewportH = x, y, width, height
}

func (s *Software) SetScissor(x, y, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scissorX, s.scissorY, s.scissorW, s.scissorH = x, y, width, height
	s.scissorSet = true
}

func (s *Software) SetBlend(srcFactor, dstFactor, equation uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blendSrc, s.blendDst, s.blendEquation = srcFactor, dstFactor, equation
}

func (s *Software) SetCullEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullEnabled = enabled
}

// SubmitPrimitive rasterizes one draw intent. Quads are split into two
// triangles sharing the diagonal v0-v2; lines and points are plotted
// directly, skipping the edge-function path triangles use.
func (s *Software) SubmitPrimitive(kind rsx.PrimitiveKind, vertices []rsx.Vertex) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case rsx.PrimitivePoints:
		for _, v := range vertices {
			s.plot(int(v.X), int(v.Y), v.R, v.G, v.B, v.A)
		}
	case rsx.PrimitiveLines:
		for i := 0; i+1 < len(vertices); i += 2 {
			s.drawLine(vertices[i], vertices[i+1])
		}
	case rsx.PrimitiveTriangles:
		for i := 0; i+2 < len(vertices); i += 3 {
			s.rasterizeTriangle(vertices[i], vertices[i+1], vertices[i+2])
		}
	case rsx.PrimitiveQuads:
		if len(vertices) != 4 {
			return fmt.Errorf("renderer: quad primitive needs 4 vertices, got %d", len(vertices))
		}
		s.rasterizeTriangle(vertices[0], vertices[1], vertices[2])
		s.rasterizeTriangle(vertices[0], vertices[2], vertices[3])
	default:
		return fmt.Errorf("renderer: unsupported primitive kind %d", kind)
	}
	return nil
}

func (s *Software) inScissor(x, y int) bool {
	return x >= s.scissorX && x < s.scissorX+s.scissorW && y >= s.scissorY && y < s.scissorY+s.scissorH
}

func (s *Software) plot(x, y int, r, g, b, a float32) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height || !s.inScissor(x, y) {
		return
	}
	off := (y*s.width + x) * 4
	if s.blendEquation == 0 {
		s.color[off+0] = byte(clamp01(r) * 255)
		s.color[off+1] = byte(clamp01(g) * 255)
		s.color[off+2] = byte(clamp01(b) * 255)
		s.color[off+3] = byte(clamp01(a) * 255)
		return
	}
	// Straight alpha-over blend; SetBlend's factor codes are recorded
	// for the Renderer state but a full blend-equation table is outside
	// this subset.
	dstR := float32(s.color[off+0]) / 255
	dstG := float32(s.color[off+1]) / 255
	dstB := float32(s.color[off+2]) / 255
	alpha := clamp01(a)
	s.color[off+0] = byte(clamp01(r*alpha+dstR*(1-alpha)) * 255)
	s.color[off+1] = byte(clamp01(g*alpha+dstG*(1-alpha)) * 255)
	s.color[off+2] = byte(clamp01(b*alpha+dstB*(1-alpha)) * 255)
	s.color[off+3] = 0xFF
}

func (s *Software) drawLine(a, b rsx.Vertex) {
	x0, y0 := int(a.X), int(a.Y)
	x1, y1 := int(b.X), int(b.Y)
	dx, dy := x1-x0, y1-y0
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		s.plot(x0, y0, a.R, a.G, a.B, a.A)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		x := x0 + int(float32(dx)*t)
		y := y0 + int(float32(dy)*t)
		r := a.R + (b.R-a.R)*t
		g := a.G + (b.G-a.G)*t
		bl := a.B + (b.B-a.B)*t
		al := a.A + (b.A-a.A)*t
		s.plot(x, y, r, g, bl, al)
	}
}

// rasterizeTriangle fills a triangle with barycentric-interpolated
// Gouraud color by walking its bounding box and testing edge-function
// signs at each pixel.
func (s *Software) rasterizeTriangle(v0, v1, v2 rsx.Vertex) {
	area := edgeFunction(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y)
	if area == 0 {
		return
	}
	if s.cullEnabled && area < 0 {
		return
	}

	minX, maxX := minMax3(v0.X, v1.X, v2.X)
	minY, maxY := minMax3(v0.Y, v1.Y, v2.Y)
	x0, x1 := clampInt(int(minX), 0, s.width-1), clampInt(int(maxX)+1, 0, s.width-1)
	y0, y1 := clampInt(int(minY), 0, s.height-1), clampInt(int(maxY)+1, 0, s.height-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edgeFunction(v1.X, v1.Y, v2.X, v2.Y, px, py)
			w1 := edgeFunction(v2.X, v2.Y, v0.X, v0.Y, px, py)
			w2 := edgeFunction(v0.X, v0.Y, v1.X, v1.Y, px, py)
			if !sameSign(w0, w1, w2, area) {
				continue
			}
			b0, b1, b2 := w0/area, w1/area, w2/area
			r := b0*v0.R + b1*v1.R + b2*v2.R
			g := b0*v0.G + b1*v1.G + b2*v2.G
			bl := b0*v0.B + b1*v1.B + b2*v2.B
			al := b0*v0.A + b1*v1.A + b2*v2.A
			s.plot(x, y, r, g, bl, al)
		}
	}
}

func edgeFunction(ax, ay, bx, by, cx, cy float32) float32 {
	return (cx-ax)*(by-ay) - (cy-ay)*(bx-ax)
}

func sameSign(w0, w1, w2, area float32) bool {
	if area > 0 {
		return w0 >= 0 && w1 >= 0 && w2 >= 0
	}
	return w0 <= 0 && w1 <= 0 && w2 <= 0
}

func minMax3(a, b, c float32) (float32, float32) {
	min, max := a, a
	for _, v := range []float32{b, c} {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
