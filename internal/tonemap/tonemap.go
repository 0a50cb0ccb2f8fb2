// Package tonemap maps exposed HDR radiance into displayable [0, 1]
// linear values. It is the last step of a frame, after bloom composite
// and exposure.
package tonemap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// ErrUnknownOperator is returned by ParseOperator.
var ErrUnknownOperator = errors.New("tonemap: unknown operator")

// Group is the workgroup shape of Apply.
var Group = compute.ID{X: 16, Y: 16}

// Operator is a tone curve.
type Operator int

const (
	// ACES is Narkowicz's fit of the ACES filmic curve.
	ACES Operator = iota
	// Reinhard is c / (1 + c) per channel.
	Reinhard
	// Clip saturates at 1.
	Clip
)

func (o Operator) String() string {
	switch o {
	case ACES:
		return "aces"
	case Reinhard:
		return "reinhard"
	case Clip:
		return "clip"
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// ParseOperator parses an operator name. The empty string selects ACES.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "aces":
		return ACES, nil
	case "reinhard":
		return Reinhard, nil
	case "clip":
		return Clip, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

// Map applies the curve to one channel value.
func (o Operator) Map(v float32) float32 {
	v = max(v, 0)
	switch o {
	case Reinhard:
		return v / (1 + v)
	case Clip:
		return min(v, 1)
	default:
		const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
		return min((v*(a*v+b))/(v*(c*v+d)+e), 1)
	}
}

// Apply writes op(src * exposure) into dst. Alpha is copied.
func Apply(ctx context.Context, d *compute.Dispatcher, dst *grid.Grid, src grid.Reader, exposure float32, op Operator) error {
	if err := grid.CheckTarget(dst, src); err != nil {
		return err
	}
	if !grid.SameSize(dst, src) {
		return grid.ErrSizeMismatch
	}
	w, h := dst.Width(), dst.Height()

	return d.Dispatch(ctx, compute.Cover(w, h, Group), func(inv compute.Invocation) {
		x, y := inv.Global.X, inv.Global.Y
		if x >= w || y >= h {
			return
		}
		c := src.At(x, y)
		dst.Set(x, y, f32.Vec4{
			op.Map(c[0] * exposure),
			op.Map(c[1] * exposure),
			op.Map(c[2] * exposure),
			c[3],
		})
	})
}
