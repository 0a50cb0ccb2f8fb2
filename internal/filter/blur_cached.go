package filter

import (
	"context"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// CachedBlurLanes is the number of lanes per group along the blur axis.
const CachedBlurLanes = 64

// CachedBlurParams configures one pass of BlurCached.
type CachedBlurParams struct {
	// Horizontal blurs along x when true, along y otherwise.
	Horizontal bool

	// Kernel is the symmetric kernel to apply. The zero value selects
	// Binomial5.
	Kernel Kernel
}

// strip is the group-shared cache of one cached blur group.
type strip struct {
	s []f32.Vec4
}

// BlurCached runs one separable pass using a group-shared strip.
//
// Each group of CachedBlurLanes lanes covers a run of outputs along the blur
// axis. The lanes cooperatively load CachedBlurLanes + 2*radius edge-clamped
// input samples into the strip, and once the strip is complete each lane
// convolves from it. For the same kernel the output matches a direct
// convolution exactly.
func BlurCached(ctx context.Context, d *compute.Dispatcher, dst *grid.Grid, src grid.Reader, p CachedBlurParams) error {
	if err := grid.CheckTarget(dst, src); err != nil {
		return err
	}
	if !grid.SameSize(dst, src) {
		return grid.ErrSizeMismatch
	}
	k := p.Kernel
	if k.IsZero() {
		k = Binomial5
	}

	w, h := src.Width(), src.Height()
	radius := k.Radius()
	size := CachedBlurLanes + 2*radius
	loads := (size + CachedBlurLanes - 1) / CachedBlurLanes

	group := compute.ID{X: 1, Y: CachedBlurLanes}
	if p.Horizontal {
		group = compute.ID{X: CachedBlurLanes, Y: 1}
	}

	// position returns the lane's index along the blur axis and the first
	// output of its group on that axis.
	position := func(l *compute.Lane[strip]) (lane, base int) {
		if p.Horizontal {
			return l.Local.X, l.Group.X * CachedBlurLanes
		}
		return l.Local.Y, l.Group.Y * CachedBlurLanes
	}

	return compute.DispatchPhases(ctx, d, compute.Cover(w, h, group),
		func() *strip { return &strip{s: make([]f32.Vec4, size)} },
		// Load: every lane fills its share of the strip, including lanes
		// whose own output falls outside the grid.
		func(l *compute.Lane[strip]) {
			lane, base := position(l)
			for n := 0; n < loads; n++ {
				i := lane + n*CachedBlurLanes
				if i >= size {
					break
				}
				pos := base - radius + i
				if p.Horizontal {
					l.Shared.s[i] = grid.Load(src, pos, l.Global.Y)
				} else {
					l.Shared.s[i] = grid.Load(src, l.Global.X, pos)
				}
			}
		},
		func(l *compute.Lane[strip]) {
			x, y := l.Global.X, l.Global.Y
			if x >= w || y >= h {
				return
			}
			lane, _ := position(l)
			center := lane + radius
			dst.Set(x, y, convolve(k.half, func(i int) f32.Vec4 {
				return l.Shared.s[center+i]
			}))
		})
}
