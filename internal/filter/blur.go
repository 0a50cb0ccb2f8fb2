package filter

import (
	"context"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// BlurGroup is the workgroup shape of the direct Blur.
var BlurGroup = compute.ID{X: 256, Y: 1}

// BlurParams selects the axis of one separable blur pass.
type BlurParams struct {
	// Horizontal blurs along x when true, along y otherwise.
	Horizontal bool
}

// axis returns the unit step of the pass.
func (p BlurParams) axis() (int, int) {
	if p.Horizontal {
		return 1, 0
	}
	return 0, 1
}

// Blur runs one pass of the fixed 9-tap Gaussian along the selected axis.
// dst and src must be the same size. Taps are clamped to the edge.
func Blur(ctx context.Context, d *compute.Dispatcher, dst *grid.Grid, src grid.Reader, p BlurParams) error {
	if err := grid.CheckTarget(dst, src); err != nil {
		return err
	}
	if !grid.SameSize(dst, src) {
		return grid.ErrSizeMismatch
	}
	w, h := src.Width(), src.Height()
	ax, ay := p.axis()

	return d.Dispatch(ctx, compute.Cover(w, h, BlurGroup), func(inv compute.Invocation) {
		x, y := inv.Global.X, inv.Global.Y
		if x >= w || y >= h {
			return
		}
		dst.Set(x, y, convolve(Gaussian9Weights[:], func(i int) f32.Vec4 {
			return grid.Load(src, x+i*ax, y+i*ay)
		}))
	})
}

// convolve applies a symmetric kernel given its center and one-sided
// weights. tap(i) returns the sample at signed offset i. Both blur variants
// share this so they accumulate in the same order.
func convolve(half []float32, tap func(int) f32.Vec4) f32.Vec4 {
	acc := grid.Scale(tap(0), half[0])
	for i := 1; i < len(half); i++ {
		acc = grid.MulAdd(acc, grid.Add(tap(i), tap(-i)), half[i])
	}
	return acc
}
