package filter

import (
	"context"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// ResampleGroup is the workgroup shape of Resample.
var ResampleGroup = compute.ID{X: 256, Y: 1}

// Resample writes src into dst, bilinearly filtered, mapping each output
// texel center to the input by the ratio of the two sizes. Equal sizes copy
// exactly.
func Resample(ctx context.Context, d *compute.Dispatcher, dst *grid.Grid, src grid.Reader) error {
	if err := grid.CheckTarget(dst, src); err != nil {
		return err
	}
	w, h := dst.Width(), dst.Height()
	sw, sh := src.Width(), src.Height()

	return d.Dispatch(ctx, compute.Cover(w, h, ResampleGroup), func(inv compute.Invocation) {
		x, y := inv.Global.X, inv.Global.Y
		if x >= w || y >= h {
			return
		}
		// Texel-space mapping in integers keeps equal sizes exact.
		fx := float32((2*x+1)*sw)/float32(2*w) - 0.5
		fy := float32((2*y+1)*sh)/float32(2*h) - 0.5
		dst.Set(x, y, grid.BilinearTexel(src, fx, fy))
	})
}
