// Package bloom provides the kernels of the bloom mip chain: a soft-knee
// bright pass, the 13-tap downsampler with firefly suppression on the
// finest level, the 3x3 tent upsampler and an additive combine.
//
// The kernels compute one output grid each. Building and walking the mip
// chain is left to the caller.
package bloom
