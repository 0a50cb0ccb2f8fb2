// Package color holds the color constants and transfer functions shared by
// the post-processing kernels.
//
// Every kernel that needs luminance uses LuminanceWeights so the histogram
// builder, the firefly-suppression weights and the tonemappers agree on the
// exact same float32 bits.
package color

import "golang.org/x/image/math/f32"

// LuminanceWeights is the perceptual weighting applied to linear RGB.
var LuminanceWeights = [3]float32{0.2125, 0.7154, 0.0721}

// Luminance returns the weighted sum of the RGB channels of c.
// Alpha is ignored.
func Luminance(c f32.Vec4) float32 {
	return c[0]*LuminanceWeights[0] + c[1]*LuminanceWeights[1] + c[2]*LuminanceWeights[2]
}
