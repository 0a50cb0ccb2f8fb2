package postfx

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/postfx/internal/grid"
	"github.com/gogpu/postfx/internal/shader"
)

// Grid is a 2D array of linear RGBA float samples.
type Grid = grid.Grid

// Reader is read-only access to a grid.
type Reader = grid.Reader

// NewGrid returns a zeroed width x height grid.
func NewGrid(width, height int) (*Grid, error) {
	return grid.New(width, height)
}

// ReadFile decodes a Radiance .hdr, TIFF, PNG or JPEG file into linear
// values.
func ReadFile(path string) (*Grid, error) {
	return grid.ReadFile(path)
}

// WriteFile encodes g by the extension of path: .hdr keeps the full range,
// .tif and .png are sRGB encoded and clipped to [0, 1].
func WriteFile(path string, g *Grid) error {
	return grid.WriteFile(path, g)
}

// Kernel identifies one of the WGSL compute shaders.
type Kernel = shader.Kernel

// ShaderPipelines owns one compute pipeline per Kernel on a HAL device.
type ShaderPipelines = shader.Pipelines

// NewShaderPipelines returns pipelines for device. Call Init before use and
// Close when done.
func NewShaderPipelines(device hal.Device) *ShaderPipelines {
	return shader.NewPipelines(device)
}
