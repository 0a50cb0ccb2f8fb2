// Package shader carries the WGSL sources of every post-processing kernel
// and builds GPU compute pipelines for them on a wgpu HAL device.
//
// The CPU kernels in internal/filter, internal/bloom, internal/exposure and
// internal/tonemap are the reference implementations; each WGSL file
// computes the same thing and declares its bindings in the same order as
// the Go signature: the uniform parameter block at binding 0, read-only
// inputs next, the single writable target last.
package shader
