//go:build !headless

package renderer

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/rsx"
)

var whiteColor = color.White

// Ebiten displays a Software-rasterized color buffer in a window,
// blitting the buffer into an ebiten.Image on every Draw call.
type Ebiten struct {
	soft *Software
	sink diag.Sink

	mu            sync.Mutex
	title         string
	running       bool
	started       chan struct{}
	image         *ebiten.Image
	frameCount    uint64
	showOverlay   bool
}

var _ rsx.Renderer = (*Ebiten)(nil)

// NewEbiten wraps a Software rasterizer with an ebiten window.
func NewEbiten(width, height int, title string, sink diag.Sink) *Ebiten {
	return &Ebiten{
		soft:        NewSoftware(width, height, sink),
		sink:        sink,
		title:       title,
		started:     make(chan struct{}),
		showOverlay: true,
	}
}

// Start launches the ebiten run loop on its own goroutine, the way
// EbitenOutput.Start does, and waits for the first Draw so the window
// is actually up before returning.
func (e *Ebiten) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.mu.Unlock()

	ebiten.SetWindowTitle(e.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	go func() {
		if err := ebiten.RunGame(e); err != nil {
			e.sink.Errorf("renderer", "ebiten run loop exited: %v", err)
		}
	}()
	<-e.started
	return nil
}

func (e *Ebiten) SetClearColor(r, g, b, a float32) { e.soft.SetClearColor(r, g, b, a) }
func (e *Ebiten) AttachSurface(handle uintptr) error { return e.soft.AttachSurface(handle) }
func (e *Ebiten) SetViewport(x, y, width, height int) { e.soft.SetViewport(x, y, width, height) }
func (e *Ebiten) SetScissor(x, y, width, height int)  { e.soft.SetScissor(x, y, width, height) }
func (e *Ebiten) SetBlend(src, dst, eq uint32)        { e.soft.SetBlend(src, dst, eq) }
func (e *Ebiten) SetCullEnabled(enabled bool)         { e.soft.SetCullEnabled(enabled) }
func (e *Ebiten) SubmitPrimitive(kind rsx.PrimitiveKind, vertices []rsx.Vertex) error {
	return e.soft.SubmitPrimitive(kind, vertices)
}

func (e *Ebiten) Resize(width, height int) error {
	if err := e.soft.Resize(width, height); err != nil {
		return err
	}
	w, h := e.soft.Dimensions()
	ebiten.SetWindowSize(w, h)
	return nil
}

// SetOverlayEnabled toggles the frame-counter debug overlay.
func (e *Ebiten) SetOverlayEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.showOverlay = enabled
}

// DrawFrame clears the software color buffer; the actual window blit
// happens in Draw, called by ebiten's run loop on the render thread.
func (e *Ebiten) DrawFrame() error { return e.soft.DrawFrame() }

// Update satisfies ebiten.Game; all emulator state advances outside
// ebiten's loop, so there is nothing to step here.
func (e *Ebiten) Update() error { return nil }

// Draw satisfies ebiten.Game by blitting the software color buffer.
func (e *Ebiten) Draw(screen *ebiten.Image) {
	w, h := e.soft.Dimensions()
	if e.image == nil || e.image.Bounds().Dx() != w || e.image.Bounds().Dy() != h {
		e.image = ebiten.NewImage(w, h)
	}
	e.image.WritePixels(e.soft.Frame())
	screen.DrawImage(e.image, nil)
	e.frameCount++
	if e.showOverlay {
		text.Draw(screen, fmt.Sprintf("frame %d", e.frameCount), basicfont.Face7x13, 4, 14, whiteColor)
	}
	select {
	case <-e.started:
	default:
		close(e.started)
	}
}

// Layout satisfies ebiten.Game.
func (e *Ebiten) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := e.soft.Dimensions()
	return w, h
}
