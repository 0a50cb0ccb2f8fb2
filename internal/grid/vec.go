package grid

import "golang.org/x/image/math/f32"

// Add returns a+b.
func Add(a, b f32.Vec4) f32.Vec4 {
	return f32.Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

// Scale returns a*s.
func Scale(a f32.Vec4, s float32) f32.Vec4 {
	return f32.Vec4{a[0] * s, a[1] * s, a[2] * s, a[3] * s}
}

// MulAdd returns acc + a*s.
func MulAdd(acc, a f32.Vec4, s float32) f32.Vec4 {
	return f32.Vec4{acc[0] + a[0]*s, acc[1] + a[1]*s, acc[2] + a[2]*s, acc[3] + a[3]*s}
}

// Lerp interpolates between a and b.
func Lerp(a, b f32.Vec4, t float32) f32.Vec4 {
	return f32.Vec4{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
		a[3] + (b[3]-a[3])*t,
	}
}

// NearlyEqual reports whether every channel of a and b differs by at most eps.
func NearlyEqual(a, b f32.Vec4, eps float32) bool {
	for i := range a {
		d := a[i] - b[i]
		if d < -eps || d > eps {
			return false
		}
	}
	return true
}
