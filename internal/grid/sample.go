package grid

import (
	"math"

	"golang.org/x/image/math/f32"
)

// Clamp clamps v into [0, n-1]. n must be positive.
func Clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Load returns the sample at (x, y) with both coordinates clamped to the
// edge of r. It never reads out of bounds.
func Load(r Reader, x, y int) f32.Vec4 {
	return r.At(Clamp(x, r.Width()), Clamp(y, r.Height()))
}

// BilinearTexel samples r at continuous texel coordinates, where integer
// values land exactly on texel centers.
func BilinearTexel(r Reader, fx, fy float32) f32.Vec4 {
	x0f := float32(math.Floor(float64(fx)))
	y0f := float32(math.Floor(float64(fy)))
	tx := fx - x0f
	ty := fy - y0f
	x0, y0 := int(x0f), int(y0f)

	c00 := Load(r, x0, y0)
	c10 := Load(r, x0+1, y0)
	c01 := Load(r, x0, y0+1)
	c11 := Load(r, x0+1, y0+1)

	top := Lerp(c00, c10, tx)
	bottom := Lerp(c01, c11, tx)
	return Lerp(top, bottom, ty)
}

// Ratio maps an output coordinate to the input coordinate at the same
// relative position, flooring to a texel index. Dimensions below 1 are
// treated as 1.
func Ratio(out, outDim, inDim int) int {
	outDim = max(outDim, 1)
	inDim = max(inDim, 1)
	return Clamp(out*inDim/outDim, inDim)
}
