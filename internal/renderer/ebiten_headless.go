//go:build headless

package renderer

import (
	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/rsx"
)

// Ebiten in headless builds is just the Software rasterizer with no
// window, standing in for the windowed backend under the same name so
// callers don't need a build-tag switch of their own.
type Ebiten struct {
	*Software
}

var _ rsx.Renderer = (*Ebiten)(nil)

// NewEbiten ignores title in headless builds; there is no window.
func NewEbiten(width, height int, title string, sink diag.Sink) *Ebiten {
	return &Ebiten{Software: NewSoftware(width, height, sink)}
}

// Start is a no-op in headless builds.
func (e *Ebiten) Start() error { return nil }
