package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based backend.
	BackendTypeWGPU RendererBackendType = iota
)

// String returns the backend name.
func (t RendererBackendType) String() string {
	if t == BackendTypeWGPU {
		return "wgpu"
	}
	return "unknown"
}

// RendererBackend owns the GPU objects of one backend.
type RendererBackend interface {
	// Device returns the logical device buffers are created on.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the device's submission queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// Release frees the queue, device, adapter and instance in that order.
	Release()
}
