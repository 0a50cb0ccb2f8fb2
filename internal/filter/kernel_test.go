package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestGaussian9WeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, Gaussian9.Sum(), 1e-5)
	assert.Equal(t, 4, Gaussian9.Radius())
	assert.Len(t, Gaussian9.Taps(), 9)
}

func TestGaussian9ExactBits(t *testing.T) {
	want := []float32{0.227027, 0.194595, 0.121622, 0.054054, 0.016216}
	for i, w := range want {
		assert.Equal(t, w, Gaussian9.Weight(i), "tap %d", i)
		assert.Equal(t, w, Gaussian9.Weight(-i), "tap %d", -i)
	}
	assert.Zero(t, Gaussian9.Weight(5))
}

func TestBinomial5(t *testing.T) {
	assert.Equal(t, 2, Binomial5.Radius())
	assert.InDelta(t, 1.0, Binomial5.Sum(), 1e-7)
	assert.True(t, floats.EqualApprox(Binomial5.Taps(), []float64{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}, 1e-7))
}

func TestGaussianKernel(t *testing.T) {
	tests := []struct {
		sigma      float64
		wantRadius int
	}{
		{0, 0},
		{-1, 0},
		{0.5, 2},
		{1, 3},
		{2.5, 8},
	}
	for _, tt := range tests {
		k := GaussianKernel(tt.sigma)
		assert.Equal(t, tt.wantRadius, k.Radius(), "sigma %v", tt.sigma)
		assert.InDelta(t, 1.0, k.Sum(), 1e-5, "sigma %v", tt.sigma)
		for i := 1; i <= k.Radius(); i++ {
			assert.LessOrEqual(t, k.Weight(i), k.Weight(i-1), "sigma %v tap %d", tt.sigma, i)
		}
	}
}

func TestGaussianKernelCached(t *testing.T) {
	a := GaussianKernel(1.5)
	b := GaussianKernel(1.5)
	assert.Equal(t, a.Taps(), b.Taps())
}

func TestKernelCacheEviction(t *testing.T) {
	c := newKernelCache(4)
	for i := 1; i <= 10; i++ {
		c.get(float64(i))
	}
	assert.LessOrEqual(t, len(c.cache), 4)
}

func TestNewKernel(t *testing.T) {
	_, err := NewKernel()
	require.ErrorIs(t, err, ErrEmptyKernel)

	half := []float32{0.5, 0.25}
	k, err := NewKernel(half...)
	require.NoError(t, err)
	half[0] = 9
	assert.Equal(t, float32(0.5), k.Weight(0), "NewKernel must copy its input")
	assert.InDelta(t, 1.0, k.Sum(), 1e-7)
}
