package color

import "math"

// decodeLUT maps an 8-bit sRGB code value to linear float32.
var decodeLUT [256]float32

// encodeLUT maps linear [0,1] quantized to 12 bits to an 8-bit sRGB code.
// 4096 entries are enough to round-trip every 8-bit value.
var encodeLUT [4096]uint8

func init() {
	for i := range decodeLUT {
		decodeLUT[i] = float32(decodeSlow(float64(i) / 255))
	}
	for i := range encodeLUT {
		s := encodeSlow(float64(i) / 4095)
		//nolint:gosec // G115: clamped to [0,255]
		encodeLUT[i] = uint8(min(max(int(s*255+0.5), 0), 255))
	}
}

// Decode8 converts an 8-bit sRGB code value to linear light.
func Decode8(s uint8) float32 {
	return decodeLUT[s]
}

// Encode8 converts linear light to an 8-bit sRGB code value.
// Input is clamped to [0,1]; NaN encodes as 0.
func Encode8(l float32) uint8 {
	if !(l > 0) {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return encodeLUT[int(l*4095+0.5)]
}

func decodeSlow(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func encodeSlow(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1/2.4) - 0.055
}
