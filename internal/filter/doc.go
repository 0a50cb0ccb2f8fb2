// Package filter provides the resample and separable blur kernels.
//
// All kernels read a grid.Reader, write one *grid.Grid and clamp every tap
// to the edge of the input, so no coordinate can leave the grid.
//
// The blur comes in two variants that produce identical output for the same
// kernel:
//   - Blur samples the input directly with the fixed 9-tap Gaussian.
//   - BlurCached loads a strip of group_width + 2*radius samples into group
//     shared memory, synchronizes on a barrier, then convolves from the
//     strip. It accepts any symmetric Kernel.
package filter
