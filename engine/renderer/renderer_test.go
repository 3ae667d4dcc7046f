package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRendererOptions(t *testing.T) {
	r := newRenderer(BackendTypeWGPU, WithLabel("bake"), WithForceSoftwareRenderer(true), WithLabel(""), WithLogger(nil))

	assert.Equal(t, "bake", r.label)
	assert.True(t, r.forceFallbackAdapter)
	assert.NotNil(t, r.logger)
	assert.Equal(t, BackendTypeWGPU, r.BackendType())
	assert.Equal(t, "wgpu", r.BackendType().String())
}

func TestUnsupportedBackend(t *testing.T) {
	_, err := NewRenderer(RendererBackendType(7))
	assert.ErrorContains(t, err, "unsupported renderer backend 7")
	assert.Equal(t, "unknown", RendererBackendType(7).String())
}
