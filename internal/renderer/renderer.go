package renderer

import (
	"fmt"

	"github.com/nikitaolenych123-coder/pxs3c/internal/diag"
	"github.com/nikitaolenych123-coder/pxs3c/internal/rsx"
)

// Backend names accepted by New and the -renderer CLI flag.
const (
	BackendSoftware = "software"
	BackendEbiten   = "ebiten"
	BackendVulkan   = "vulkan"
)

// New constructs the named Renderer backend at the given size.
func New(backend string, width, height int, title string, sink diag.Sink) (rsx.Renderer, error) {
	switch backend {
	case "", BackendSoftware:
		return NewSoftware(width, height, sink), nil
	case BackendEbiten:
		return NewEbiten(width, height, title, sink), nil
	case BackendVulkan:
		return NewVulkan(width, height, sink), nil
	default:
		return nil, fmt.Errorf("renderer: unknown backend %q", backend)
	}
}
