package color

import (
	"math"
	"testing"

	"golang.org/x/image/math/f32"
)

func TestLuminanceWeightsSum(t *testing.T) {
	sum := LuminanceWeights[0] + LuminanceWeights[1] + LuminanceWeights[2]
	if math.Abs(float64(sum-1)) > 1e-6 {
		t.Errorf("sum(LuminanceWeights) = %v, want 1", sum)
	}
}

func TestLuminance(t *testing.T) {
	tests := []struct {
		name string
		c    f32.Vec4
		want float32
	}{
		{"black", f32.Vec4{0, 0, 0, 1}, 0},
		{"red", f32.Vec4{1, 0, 0, 1}, 0.2125},
		{"green", f32.Vec4{0, 1, 0, 1}, 0.7154},
		{"blue", f32.Vec4{0, 0, 1, 1}, 0.0721},
		{"alpha ignored", f32.Vec4{0, 0, 0, 100}, 0},
		{"hdr gray", f32.Vec4{4, 4, 4, 1}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Luminance(tt.c)
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("Luminance(%v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestToSRGBKnownValues(t *testing.T) {
	tests := []struct {
		linear float32
		want   float32
	}{
		{0, 0},
		{1, 1},
		{0.0031308, 0.04045},
		{0.2140, 0.5},
	}
	for _, tt := range tests {
		got := ToSRGB(f32.Vec4{tt.linear, tt.linear, tt.linear, 0.5})
		for ch := 0; ch < 3; ch++ {
			if math.Abs(float64(got[ch]-tt.want)) > 1e-3 {
				t.Errorf("ToSRGB(%v)[%d] = %v, want %v", tt.linear, ch, got[ch], tt.want)
			}
		}
		if got[3] != 0.5 {
			t.Errorf("ToSRGB alpha = %v, want 0.5", got[3])
		}
	}
}

func TestSRGBRoundTrip(t *testing.T) {
	for i := 0; i <= 100; i++ {
		v := float32(i) / 25 // covers [0,4] including HDR
		c := f32.Vec4{v, v * 0.5, v * 0.25, 1}
		got := ToLinear(ToSRGB(c))
		for ch := 0; ch < 3; ch++ {
			if math.Abs(float64(got[ch]-c[ch])) > 1e-4 {
				t.Fatalf("round trip of %v channel %d = %v", c, ch, got[ch])
			}
		}
	}
}

func TestToSRGBMonotonicAboveOne(t *testing.T) {
	prev := ToSRGB(f32.Vec4{1, 1, 1, 1})[0]
	for _, v := range []float32{1.5, 2, 8, 64} {
		got := ToSRGB(f32.Vec4{v, v, v, 1})[0]
		if got <= prev {
			t.Errorf("ToSRGB(%v) = %v, not above %v", v, got, prev)
		}
		prev = got
	}
}

func TestEncodeDecode8RoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		got := Encode8(Decode8(uint8(i)))
		// 12-bit quantization allows one code of error.
		if d := int(got) - i; d < -1 || d > 1 {
			t.Errorf("Encode8(Decode8(%d)) = %d", i, got)
		}
	}
}

func TestEncode8Clamps(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{float32(math.NaN()), 0},
		{1, 255},
		{42, 255},
		{float32(math.Inf(1)), 255},
	}
	for _, tt := range tests {
		if got := Encode8(tt.in); got != tt.want {
			t.Errorf("Encode8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDecode8MatchesCurve(t *testing.T) {
	for i := 0; i < 256; i++ {
		want := decodeSlow(float64(i) / 255)
		if math.Abs(float64(Decode8(uint8(i)))-want) > 1e-6 {
			t.Errorf("Decode8(%d) = %v, want %v", i, Decode8(uint8(i)), want)
		}
	}
}

func BenchmarkEncode8(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Encode8(float32(i%1000) / 1000)
	}
}

func BenchmarkToSRGB(b *testing.B) {
	c := f32.Vec4{0.5, 1.5, 0.1, 1}
	for i := 0; i < b.N; i++ {
		_ = ToSRGB(c)
	}
}
