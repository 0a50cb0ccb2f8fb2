package shader

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal"
)

// ErrNotInitialized is returned by Pipelines accessors before Init.
var ErrNotInitialized = errors.New("shader: pipelines not initialized")

// Pipelines owns one compute pipeline per Kernel on a HAL device.
type Pipelines struct {
	mu     sync.Mutex
	device hal.Device

	modules   [KernelCount]hal.ShaderModule
	bgLayouts [KernelCount]hal.BindGroupLayout
	layouts   [KernelCount]hal.PipelineLayout
	pipelines [KernelCount]hal.ComputePipeline

	initialized bool
}

// NewPipelines returns an uninitialized set bound to device.
func NewPipelines(device hal.Device) *Pipelines {
	return &Pipelines{device: device}
}

// Init creates the shader modules, layouts and pipelines of every kernel.
// Calling it again after success is a no-op. On failure everything created
// so far is released.
func (p *Pipelines) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	for k := Kernel(0); k < KernelCount; k++ {
		if err := p.create(k); err != nil {
			p.release()
			return err
		}
	}
	slogger().Info("shader: pipelines initialized", "kernels", int(KernelCount))
	p.initialized = true
	return nil
}

func (p *Pipelines) create(k Kernel) error {
	src, err := k.Source()
	if err != nil {
		return err
	}
	label := "postfx_" + k.String()

	module, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: src},
	})
	if err != nil {
		return fmt.Errorf("shader: create module for %s: %w", k, err)
	}
	p.modules[k] = module

	entries := k.BindGroupLayoutEntries()
	bgl, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bgl",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("shader: create bind group layout for %s: %w", k, err)
	}
	p.bgLayouts[k] = bgl

	layout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgl},
	})
	if err != nil {
		return fmt.Errorf("shader: create pipeline layout for %s: %w", k, err)
	}
	p.layouts[k] = layout

	pipeline, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  label,
		Layout: layout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("shader: create compute pipeline for %s: %w", k, err)
	}
	p.pipelines[k] = pipeline

	slogger().Debug("shader: pipeline created",
		"kernel", k.String(),
		"bindings", len(entries),
		"shader_bytes", len(src))
	return nil
}

// Pipeline returns the compute pipeline of k.
func (p *Pipelines) Pipeline(k Kernel) (hal.ComputePipeline, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKernel, int(k))
	}
	if !p.initialized {
		return nil, ErrNotInitialized
	}
	return p.pipelines[k], nil
}

// BindGroupLayout returns the @group(0) layout of k, for building bind
// groups against its pipeline.
func (p *Pipelines) BindGroupLayout(k Kernel) (hal.BindGroupLayout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKernel, int(k))
	}
	if !p.initialized {
		return nil, ErrNotInitialized
	}
	return p.bgLayouts[k], nil
}

// Initialized reports whether Init has succeeded since the last Close.
func (p *Pipelines) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Close releases every GPU object. Init may be called again afterwards.
func (p *Pipelines) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release()
}

// release destroys in reverse dependency order. Slots never created are
// nil and skipped, so it also cleans up a partial Init.
func (p *Pipelines) release() {
	for k := Kernel(0); k < KernelCount; k++ {
		if p.pipelines[k] != nil {
			p.device.DestroyComputePipeline(p.pipelines[k])
			p.pipelines[k] = nil
		}
		if p.layouts[k] != nil {
			p.device.DestroyPipelineLayout(p.layouts[k])
			p.layouts[k] = nil
		}
		if p.bgLayouts[k] != nil {
			p.device.DestroyBindGroupLayout(p.bgLayouts[k])
			p.bgLayouts[k] = nil
		}
		if p.modules[k] != nil {
			p.device.DestroyShaderModule(p.modules[k])
			p.modules[k] = nil
		}
	}
	p.initialized = false
}
