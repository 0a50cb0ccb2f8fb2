// Package postfx is an HDR post-processing pipeline: physically based bloom
// over a mip chain and histogram-driven automatic exposure, followed by a
// tone curve.
//
// # Overview
//
// The work is done by small data-parallel kernels that run as workgroups on
// a CPU worker pool, mirroring how the same kernels run as compute shaders
// on a GPU. A Pipeline owns the pool and orders the dispatches of a frame:
//
//	threshold -> downsample chain -> upsample chain -> composite
//	histogram -> reduce/adapt -> tonemap
//
// # Quick Start
//
//	p, err := postfx.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	src, _ := postfx.ReadFile("scene.hdr")
//	out, stats, err := p.Frame(ctx, src, 1.0/60)
//	_ = postfx.WriteFile("scene.png", out)
//
// # Configuration
//
// Defaults come from DefaultConfig. LoadConfig reads YAML or TOML files on
// top of the defaults; WithConfig passes a Config directly.
//
// # GPU
//
// NewShaderPipelines builds the WGSL versions of every kernel on a wgpu HAL
// device. Their bindings follow the same read-only/read-write split as the
// CPU kernels.
//
// # Logging
//
// postfx is silent by default. SetLogger enables structured logging for the
// package and its internal dispatchers.
package postfx
