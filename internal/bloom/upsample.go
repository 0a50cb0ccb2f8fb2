package bloom

import (
	"context"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// DefaultUpsampleRadius is the tent radius, in input texels, used when a
// caller has no preference.
const DefaultUpsampleRadius = 1

// UpsampleParams configures one upsample dispatch.
type UpsampleParams struct {
	// Radius is the tap spacing of the tent, in input texels.
	Radius float32
}

// tentWeights are the 3x3 tent weights, row-major, before the 1/16 scale.
var tentWeights = [3][3]float32{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

// Upsample writes the tent-filtered src into dst. Each output texel center
// maps to a continuous input coordinate by the size ratio, and nine
// bilinear taps are taken at that point offset by -Radius, 0 and +Radius
// on each axis. The kernel only filters; adding the result onto a finer
// level is done by Combine.
func Upsample(ctx context.Context, d *compute.Dispatcher, dst *grid.Grid, src grid.Reader, p UpsampleParams) error {
	if err := grid.CheckTarget(dst, src); err != nil {
		return err
	}
	w, h := dst.Width(), dst.Height()
	sw, sh := src.Width(), src.Height()

	return d.Dispatch(ctx, compute.Cover(w, h, Group), func(inv compute.Invocation) {
		x, y := inv.Global.X, inv.Global.Y
		if x >= w || y >= h {
			return
		}
		fx := float32((2*x+1)*sw)/float32(2*w) - 0.5
		fy := float32((2*y+1)*sh)/float32(2*h) - 0.5
		dst.Set(x, y, Tent(src, fx, fy, p.Radius))
	})
}

// Tent returns the 3x3 tent-filtered sample of src around the continuous
// texel coordinate (fx, fy).
func Tent(src grid.Reader, fx, fy, radius float32) f32.Vec4 {
	var out f32.Vec4
	for j := -1; j <= 1; j++ {
		for i := -1; i <= 1; i++ {
			s := grid.BilinearTexel(src, fx+float32(i)*radius, fy+float32(j)*radius)
			out = grid.MulAdd(out, s, tentWeights[j+1][i+1])
		}
	}
	return grid.Scale(out, 1.0/16)
}
