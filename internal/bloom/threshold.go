package bloom

import (
	"context"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// ThresholdParams configures the bright pass.
type ThresholdParams struct {
	// Threshold is the brightness above which texels feed the bloom.
	Threshold float32
	// Knee is the width of the soft transition below Threshold, as a
	// fraction of Threshold. 0 gives a hard cut.
	Knee float32
}

// Threshold writes the part of src brighter than the threshold into dst,
// which may differ in size (the bright pass usually also downsamples).
// Brightness is the largest RGB channel; the quadratic knee keeps the
// response continuous.
func Threshold(ctx context.Context, d *compute.Dispatcher, dst *grid.Grid, src grid.Reader, p ThresholdParams) error {
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
		c := grid.BilinearTexel(src, fx, fy)
		dst.Set(x, y, BrightPass(c, p))
	})
}

// BrightPass scales c by its contribution above the threshold.
func BrightPass(c f32.Vec4, p ThresholdParams) f32.Vec4 {
	brightness := max(c[0], c[1], c[2])
	knee := p.Threshold * p.Knee

	contrib := brightness - p.Threshold
	if knee > 0 {
		soft := min(max(brightness-p.Threshold+knee, 0), 2*knee)
		soft = soft * soft / (4 * knee)
		contrib = max(soft, contrib)
	}
	if contrib <= 0 || brightness <= 0 {
		return f32.Vec4{0, 0, 0, c[3]}
	}
	s := contrib / brightness
	return f32.Vec4{c[0] * s, c[1] * s, c[2] * s, c[3]}
}
