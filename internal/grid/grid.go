// Package grid provides the 2D floating-point pixel grids that the
// post-processing kernels read and write.
//
// A kernel borrows its inputs as Reader values, which expose no mutation, and
// writes exactly one *Grid. Every sample is an f32.Vec4 holding linear RGBA.
package grid

import (
	"errors"

	"golang.org/x/image/math/f32"
)

// Common errors for grid operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("grid: invalid dimensions")

	// ErrUnsupportedFormat is returned when a file extension has no codec.
	ErrUnsupportedFormat = errors.New("grid: unsupported format")

	// ErrSizeMismatch is returned when grids that must match in size do not.
	ErrSizeMismatch = errors.New("grid: size mismatch")

	// ErrAliased is returned when a kernel's output grid is also one of its
	// inputs.
	ErrAliased = errors.New("grid: output aliases an input")
)

// Reader is a read-only view of a pixel grid.
type Reader interface {
	Width() int
	Height() int
	// At returns the sample at (x, y). Callers must pass in-range
	// coordinates; use Load for clamped access.
	At(x, y int) f32.Vec4
}

// Grid is a dense row-major grid of RGBA float32 samples.
//
// Thread safety: concurrent reads are safe. Concurrent Set calls are safe
// as long as no two goroutines write the same coordinate, which is how the
// kernels use it (one lane per output sample).
type Grid struct {
	pix    []f32.Vec4
	width  int
	height int
}

// New allocates a zeroed grid.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Grid{
		pix:    make([]f32.Vec4, width*height),
		width:  width,
		height: height,
	}, nil
}

// Filled allocates a grid with every sample set to c.
func Filled(width, height int, c f32.Vec4) (*Grid, error) {
	g, err := New(width, height)
	if err != nil {
		return nil, err
	}
	g.Fill(c)
	return g, nil
}

// Width returns the grid width in samples.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in samples.
func (g *Grid) Height() int { return g.height }

// At returns the sample at (x, y).
func (g *Grid) At(x, y int) f32.Vec4 {
	return g.pix[y*g.width+x]
}

// Set stores c at (x, y).
func (g *Grid) Set(x, y int, c f32.Vec4) {
	g.pix[y*g.width+x] = c
}

// Fill sets every sample to c.
func (g *Grid) Fill(c f32.Vec4) {
	for i := range g.pix {
		g.pix[i] = c
	}
}

// Clear zeroes every sample.
func (g *Grid) Clear() {
	clear(g.pix)
}

// Pix returns the backing samples in row-major order.
func (g *Grid) Pix() []f32.Vec4 {
	return g.pix
}

// Copy copies src into dst. Both must have the same size.
func Copy(dst *Grid, src Reader) error {
	if err := CheckTarget(dst, src); err != nil {
		return err
	}
	if !SameSize(dst, src) {
		return ErrSizeMismatch
	}
	if g, ok := src.(*Grid); ok {
		copy(dst.pix, g.pix)
		return nil
	}
	for y := 0; y < dst.height; y++ {
		for x := 0; x < dst.width; x++ {
			dst.pix[y*dst.width+x] = src.At(x, y)
		}
	}
	return nil
}

// SameSize reports whether a and b have identical dimensions.
func SameSize(a, b Reader) bool {
	return a.Width() == b.Width() && a.Height() == b.Height()
}

// CheckTarget verifies that dst is a usable write target for a kernel
// reading srcs: non-nil and distinct from every input.
func CheckTarget(dst *Grid, srcs ...Reader) error {
	if dst == nil || len(dst.pix) == 0 {
		return ErrInvalidDimensions
	}
	for _, s := range srcs {
		if s == nil || s.Width() <= 0 || s.Height() <= 0 {
			return ErrInvalidDimensions
		}
		if Aliases(s, dst) {
			return ErrAliased
		}
	}
	return nil
}

// Aliases reports whether r is backed by the same storage as g.
func Aliases(r Reader, g *Grid) bool {
	o, ok := r.(*Grid)
	if !ok || o == nil || g == nil || len(o.pix) == 0 || len(g.pix) == 0 {
		return false
	}
	return &o.pix[0] == &g.pix[0]
}
