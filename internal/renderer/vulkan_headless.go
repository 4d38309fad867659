//go:build headless

package renderer

import (
	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/rsx"
)

// Vulkan in headless builds carries no Vulkan dependency at all: it
// is the Software rasterizer under the Vulkan name, with zero GPU
// calls anywhere in the build.
type Vulkan struct {
	*Software
}

var _ rsx.Renderer = (*Vulkan)(nil)

func NewVulkan(width, height int, sink diag.Sink) *Vulkan {
	return &Vulkan{Software: NewSoftware(width, height, sink)}
}

func (v *Vulkan) Loaded() bool { return false }
func (v *Vulkan) Destroy()     {}
