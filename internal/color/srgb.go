package color

import (
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/math/f32"
)

// ToSRGB applies the sRGB transfer curve (OETF) to the RGB channels of a
// linear color. Values above 1 are extrapolated along the curve rather than
// clipped, so HDR input keeps its ordering. Alpha is returned unchanged.
func ToSRGB(c f32.Vec4) f32.Vec4 {
	s := colorful.LinearRgb(float64(c[0]), float64(c[1]), float64(c[2]))
	return f32.Vec4{float32(s.R), float32(s.G), float32(s.B), c[3]}
}

// ToLinear is the inverse of ToSRGB.
func ToLinear(c f32.Vec4) f32.Vec4 {
	r, g, b := colorful.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])}.LinearRgb()
	return f32.Vec4{float32(r), float32(g), float32(b), c[3]}
}
