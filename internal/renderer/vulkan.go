//go:build unix && !headless

package renderer

import (
	vk "github.com/goki/vulkan"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/rsx"
)

// Vulkan attempts hardware-accelerated presentation via goki/vulkan and
// falls back to the Software rasterizer when no driver loads: a thin
// instance-creation probe in front of a software reference rasterizer
// that always works, regardless of what GPU drivers are present.
type Vulkan struct {
	soft     *Software
	sink     diag.Sink
	instance vk.Instance
	loaded   bool
}

var _ rsx.Renderer = (*Vulkan)(nil)

// NewVulkan tries to load the Vulkan loader and create a bare instance;
// any failure degrades to pure software rendering rather than erroring,
// mirroring the NativeCompiler's dlopen graceful-degrade pattern.
func NewVulkan(width, height int, sink diag.Sink) *Vulkan {
	v := &Vulkan{soft: NewSoftware(width, height, sink), sink: sink}
	v.loaded = v.tryInit()
	if !v.loaded {
		sink.Logf("renderer", "vulkan unavailable, using software rasterizer")
	}
	return v
}

func (v *Vulkan) tryInit() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v.sink.Warnf("renderer", "vulkan init panicked: %v", r)
			ok = false
		}
	}()
	if err := vk.Init(); err != nil {
		v.sink.Warnf("renderer", "vulkan loader init failed: %v", err)
		return false
	}
	appInfo := &vk.ApplicationInfo{
		SType:      vk.StructureTypeApplicationInfo,
		ApiVersion: vk.MakeVersion(1, 0, 0),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(createInfo, nil, &instance); res != vk.Success {
		v.sink.Warnf("renderer", "vkCreateInstance failed: %v", res)
		return false
	}
	v.instance = instance
	return true
}

// TODO: a real swapchain/pipeline path that uploads Software.Frame()
// to a presented image. Every draw call below is serviced by the
// software rasterizer until that lands.

func (v *Vulkan) SetClearColor(r, g, b, a float32)   { v.soft.SetClearColor(r, g, b, a) }
func (v *Vulkan) AttachSurface(handle uintptr) error { return v.soft.AttachSurface(handle) }
func (v *Vulkan) Resize(width, height int) error     { return v.soft.Resize(width, height) }
func (v *Vulkan) SetViewport(x, y, width, height int) { v.soft.SetViewport(x, y, width, height) }
func (v *Vulkan) SetScissor(x, y, width, height int)  { v.soft.SetScissor(x, y, width, height) }
func (v *Vulkan) SetBlend(src, dst, eq uint32)        { v.soft.SetBlend(src, dst, eq) }
func (v *Vulkan) SetCullEnabled(enabled bool)         { v.soft.SetCullEnabled(enabled) }
func (v *Vulkan) SubmitPrimitive(kind rsx.PrimitiveKind, vertices []rsx.Vertex) error {
	return v.soft.SubmitPrimitive(kind, vertices)
}
func (v *Vulkan) DrawFrame() error { return v.soft.DrawFrame() }

// Frame exposes the backing color buffer, e.g. for a future swapchain
// upload path or for tests.
func (v *Vulkan) Frame() []byte { return v.soft.Frame() }

// Loaded reports whether a real Vulkan instance is backing this
// renderer, or whether it degraded to pure software.
func (v *Vulkan) Loaded() bool { return v.loaded }

func (v *Vulkan) Destroy() {
	if v.loaded {
		vk.DestroyInstance(v.instance, nil)
	}
}
