package renderer

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/renderer/skinning"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	label                string
	forceFallbackAdapter bool

	logger *slog.Logger
}

// Renderer is the GPU context resolved poses are uploaded through.
//
// It is headless: it owns a device and queue but no surface, so skinning palettes can be kept in
// GPU storage buffers for a presentation layer that lives elsewhere.
type Renderer interface {
	// BackendType returns the backend the renderer was created with.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Device returns the logical device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the device's queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// NewSkinningSink creates a sink that keeps one palette storage buffer per entity on this
	// renderer's device.
	//
	// Returns:
	//   - skinning.Sink: the sink; close it before releasing the renderer
	NewSkinningSink() skinning.Sink

	// Release frees every GPU object owned by the renderer. Safe to call more than once.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a headless Renderer for the given backend.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - options: functional options for renderer configuration
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no adapter or device is available
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType, options...)

	switch backendType {
	case BackendTypeWGPU:
		b, err := newWGPURendererBackend(r.label, r.forceFallbackAdapter)
		if err != nil {
			return nil, fmt.Errorf("create %s renderer: %w", backendType, err)
		}
		r.backend = b
	default:
		return nil, fmt.Errorf("unsupported renderer backend %d", backendType)
	}

	r.logger.Info("renderer ready", "backend", backendType.String(), "fallback", r.forceFallbackAdapter)
	return r, nil
}

// newRenderer applies options without touching the GPU.
func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		backendType: backendType,
		label:       "oxyanim device",
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) NewSkinningSink() skinning.Sink {
	return skinning.NewWGPUSink(r.backend.Device(), r.backend.Queue(), r.logger)
}

func (r *renderer) Release() {
	r.backend.Release()
}
