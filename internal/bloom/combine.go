package bloom

import (
	"context"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// Combine writes base + add*scale into dst. All three grids must be the
// same size and dst must differ from both inputs. This is the accumulation
// step of the upsample chain and the final bloom composite.
func Combine(ctx context.Context, d *compute.Dispatcher, dst *grid.Grid, base, add grid.Reader, scale float32) error {
	if err := grid.CheckTarget(dst, base, add); err != nil {
		return err
	}
	if !grid.SameSize(dst, base) || !grid.SameSize(dst, add) {
		return grid.ErrSizeMismatch
	}
	w, h := dst.Width(), dst.Height()

	return d.Dispatch(ctx, compute.Cover(w, h, Group), func(inv compute.Invocation) {
		x, y := inv.Global.X, inv.Global.Y
		if x >= w || y >= h {
			return
		}
		c := grid.MulAdd(base.At(x, y), add.At(x, y), scale)
		// Alpha comes from the base.
		c[3] = base.At(x, y)[3]
		dst.Set(x, y, c)
	})
}
