package postfx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/bloom"
	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/filter"
	"github.com/gogpu/postfx/internal/grid"
	"github.com/gogpu/postfx/internal/tonemap"
)

func uniformGrid(t testing.TB, w, h int, c f32.Vec4) *Grid {
	t.Helper()
	g, err := grid.Filled(w, h, c)
	require.NoError(t, err)
	return g
}

func newPipeline(t testing.TB, mutate func(*Config)) *Pipeline {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 4
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(WithConfig(cfg))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

// A uniform grid pushed through downsample, upsample and both blur passes
// keeps its color.
func TestKernelChainPreservesUniformColor(t *testing.T) {
	d := compute.NewDispatcher(2)
	defer d.Close()
	ctx := context.Background()
	c := f32.Vec4{0.7, 0.2, 1.9, 1}

	src := uniformGrid(t, 4, 4, c)
	half, _ := grid.New(2, 2)
	up, _ := grid.New(4, 4)
	h, _ := grid.New(4, 4)
	v, _ := grid.New(4, 4)

	require.NoError(t, bloom.Downsample(ctx, d, half, src, bloom.DownsampleParams{MipLevel: 1}))
	require.NoError(t, bloom.Upsample(ctx, d, up, half, bloom.UpsampleParams{Radius: bloom.DefaultUpsampleRadius}))
	require.NoError(t, filter.Blur(ctx, d, h, up, filter.BlurParams{Horizontal: true}))
	require.NoError(t, filter.Blur(ctx, d, v, h, filter.BlurParams{Horizontal: false}))

	for i, got := range v.Pix() {
		assert.True(t, grid.NearlyEqual(got, c, 1e-5), "texel %d = %v, want %v", i, got, c)
	}
}

// With the Karis average on the first level, a uniform grid keeps its hue
// and is scaled by the block weight.
func TestKernelChainKarisKeepsHue(t *testing.T) {
	d := compute.NewDispatcher(2)
	defer d.Close()
	ctx := context.Background()
	c := f32.Vec4{0.7, 0.2, 1.9, 1}

	src := uniformGrid(t, 4, 4, c)
	half, _ := grid.New(2, 2)
	up, _ := grid.New(4, 4)
	require.NoError(t, bloom.Downsample(ctx, d, half, src, bloom.DownsampleParams{MipLevel: 0}))
	require.NoError(t, bloom.Upsample(ctx, d, up, half, bloom.UpsampleParams{Radius: 1}))

	k := bloom.KarisWeight(c)
	for _, got := range up.Pix() {
		for ch := 0; ch < 3; ch++ {
			assert.InDelta(t, c[ch]*k, got[ch], 1e-5)
		}
	}
}

func TestBloomUniform(t *testing.T) {
	p := newPipeline(t, func(c *Config) {
		c.Bloom.Threshold = 0
		c.Bloom.Mips = 3
	})
	c := f32.Vec4{2, 1, 0.5, 1}
	out, err := p.Bloom(context.Background(), uniformGrid(t, 16, 16, c))
	require.NoError(t, err)
	require.Equal(t, 16, out.Width())
	require.Equal(t, 16, out.Height())

	k := bloom.KarisWeight(c)
	for _, got := range out.Pix() {
		for ch := 0; ch < 3; ch++ {
			assert.InDelta(t, c[ch]*k, got[ch], 1e-4)
		}
	}
}

func TestBloomCachedBlurUniform(t *testing.T) {
	p := newPipeline(t, func(c *Config) {
		c.Bloom.Threshold = 0
		c.Bloom.CachedBlur = true
	})
	c := f32.Vec4{0.3, 0.3, 0.3, 1}
	out, err := p.Bloom(context.Background(), uniformGrid(t, 37, 20, c))
	require.NoError(t, err)

	k := bloom.KarisWeight(c)
	for _, got := range out.Pix() {
		assert.InDelta(t, c[0]*k, got[0], 1e-4)
	}
}

func TestBloomCachedGaussianUniform(t *testing.T) {
	p := newPipeline(t, func(c *Config) {
		c.Bloom.Threshold = 0
		c.Bloom.CachedBlur = true
		c.Bloom.BlurSigma = 2.5
	})
	c := f32.Vec4{1.2, 0.6, 0.2, 1}
	out, err := p.Bloom(context.Background(), uniformGrid(t, 40, 24, c))
	require.NoError(t, err)

	k := bloom.KarisWeight(c)
	for _, got := range out.Pix() {
		for ch := 0; ch < 3; ch++ {
			assert.InDelta(t, c[ch]*k, got[ch], 1e-4)
		}
	}
}

// The blur pass uses the configured Gaussian, which reaches further than the
// 5-tap binomial.
func TestBlurPassUsesSigma(t *testing.T) {
	impulse := func(t *testing.T) *Grid {
		g := uniformGrid(t, 21, 1, f32.Vec4{})
		g.Set(10, 0, f32.Vec4{1, 1, 1, 1})
		return g
	}
	tests := []struct {
		name  string
		sigma float64
		reach bool
	}{
		{"binomial", 0, false},
		{"gaussian", 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, func(c *Config) {
				c.Bloom.CachedBlur = true
				c.Bloom.BlurSigma = tt.sigma
			})
			dst := uniformGrid(t, 21, 1, f32.Vec4{})
			require.NoError(t, p.blurPass(context.Background(), dst, impulse(t), true))

			if tt.reach {
				assert.Greater(t, dst.At(15, 0)[0], float32(0))
			} else {
				assert.Equal(t, float32(0), dst.At(15, 0)[0])
			}
			assert.Greater(t, dst.At(10, 0)[0], dst.At(12, 0)[0])
		})
	}
}

func TestBloomBelowThreshold(t *testing.T) {
	p := newPipeline(t, nil)
	out, err := p.Bloom(context.Background(), uniformGrid(t, 32, 32, f32.Vec4{0.2, 0.2, 0.2, 1}))
	require.NoError(t, err)
	for _, got := range out.Pix() {
		assert.InDelta(t, 0, got[0], 1e-4)
	}
}

func TestBloomSpreadsHighlight(t *testing.T) {
	p := newPipeline(t, nil)
	src := uniformGrid(t, 64, 64, f32.Vec4{0.1, 0.1, 0.1, 1})
	for y := 30; y < 34; y++ {
		for x := 30; x < 34; x++ {
			src.Set(x, y, f32.Vec4{50, 40, 30, 1})
		}
	}
	out, err := p.Bloom(context.Background(), src)
	require.NoError(t, err)

	center, near, far := out.At(32, 32)[0], out.At(40, 32)[0], out.At(2, 2)[0]
	assert.Greater(t, center, near)
	assert.Greater(t, near, far)
	assert.Greater(t, near, float32(1e-3))
}

func TestBloomTinyGrid(t *testing.T) {
	p := newPipeline(t, nil)
	out, err := p.Bloom(context.Background(), uniformGrid(t, 1, 1, f32.Vec4{5, 5, 5, 1}))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Width())
}

func TestExposeSnapsThenAdapts(t *testing.T) {
	p := newPipeline(t, nil)
	ctx := context.Background()

	grey := uniformGrid(t, 32, 32, f32.Vec4{0.5, 0.5, 0.5, 1})
	e, err := p.Expose(ctx, grey, 1.0/60)
	require.NoError(t, err)
	assert.Equal(t, e.Average, e.Adapted, "first frame snaps")
	assert.InDelta(t, 0.5, e.Average, 0.03)
	assert.InDelta(t, 0.18/e.Adapted, e.Exposure, 1e-5)
	assert.Equal(t, e.Adapted, p.AdaptedLuminance())

	bright := uniformGrid(t, 32, 32, f32.Vec4{8, 8, 8, 1})
	e2, err := p.Expose(ctx, bright, 1.0/60)
	require.NoError(t, err)
	assert.InDelta(t, 8, e2.Average, 0.5)
	assert.Greater(t, e2.Adapted, e.Adapted)
	assert.Less(t, e2.Adapted, e2.Average)

	// Long frames converge.
	var e3 Exposure
	for i := 0; i < 20; i++ {
		e3, err = p.Expose(ctx, bright, 1)
		require.NoError(t, err)
	}
	assert.InDelta(t, e3.Average, e3.Adapted, 1e-3)
}

func TestExposeReset(t *testing.T) {
	p := newPipeline(t, nil)
	ctx := context.Background()

	_, err := p.Expose(ctx, uniformGrid(t, 8, 8, f32.Vec4{4, 4, 4, 1}), 0.1)
	require.NoError(t, err)
	p.Reset()
	assert.Equal(t, float32(0), p.AdaptedLuminance())

	e, err := p.Expose(ctx, uniformGrid(t, 8, 8, f32.Vec4{0.25, 0.25, 0.25, 1}), 0.1)
	require.NoError(t, err)
	assert.Equal(t, e.Average, e.Adapted)
}

func TestExposeBlackFrame(t *testing.T) {
	p := newPipeline(t, nil)
	e, err := p.Expose(context.Background(), uniformGrid(t, 8, 8, f32.Vec4{}), 0.1)
	require.NoError(t, err)
	assert.False(t, e.Exposure != e.Exposure, "exposure is NaN")
	assert.LessOrEqual(t, e.Exposure, float32(0.18/minAdapted))
}

func TestFrame(t *testing.T) {
	p := newPipeline(t, nil)
	src := uniformGrid(t, 24, 16, f32.Vec4{0.18, 0.18, 0.18, 1})
	src.Set(5, 5, f32.Vec4{100, 100, 100, 1})

	out, e, err := p.Frame(context.Background(), src, 1.0/30)
	require.NoError(t, err)
	require.Equal(t, 24, out.Width())
	require.Equal(t, 16, out.Height())
	assert.Greater(t, e.Exposure, float32(0))

	for i, c := range out.Pix() {
		for ch := 0; ch < 3; ch++ {
			require.GreaterOrEqual(t, c[ch], float32(0), "texel %d", i)
			require.LessOrEqual(t, c[ch], float32(1), "texel %d", i)
		}
	}
	assert.Greater(t, out.At(5, 5)[0], out.At(20, 12)[0])
}

func TestFramePassthrough(t *testing.T) {
	p := newPipeline(t, func(c *Config) {
		c.Bloom.Enabled = false
		c.Exposure.Enabled = false
		c.Tonemap = "clip"
	})
	src := uniformGrid(t, 5, 5, f32.Vec4{0.25, 0.5, 3, 0.75})
	out, e, err := p.Frame(context.Background(), src, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), e.Exposure)
	for _, c := range out.Pix() {
		assert.Equal(t, f32.Vec4{0.25, 0.5, 1, 0.75}, c)
	}
	assert.Equal(t, tonemap.Clip, p.Config().operator)
}

func TestPipelineClosed(t *testing.T) {
	p, err := New(WithWorkers(1))
	require.NoError(t, err)
	p.Close()
	p.Close()

	src := uniformGrid(t, 4, 4, f32.Vec4{1, 1, 1, 1})
	_, err = p.Bloom(context.Background(), src)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = p.Expose(context.Background(), src, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = p.Frame(context.Background(), src, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPipelineInvalidInput(t *testing.T) {
	p := newPipeline(t, nil)
	_, err := p.Bloom(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, _, err = p.Frame(context.Background(), nil, 0)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	a := uniformGrid(t, 4, 4, f32.Vec4{})
	b := uniformGrid(t, 3, 3, f32.Vec4{})
	assert.ErrorIs(t, p.Composite(context.Background(), a, a, a), ErrAliasedGrid)
	dst := uniformGrid(t, 4, 4, f32.Vec4{})
	assert.ErrorIs(t, p.Composite(context.Background(), dst, a, b), ErrSizeMismatch)
}

func TestFrameCancelled(t *testing.T) {
	p := newPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := p.Frame(ctx, uniformGrid(t, 16, 16, f32.Vec4{1, 1, 1, 1}), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkFrame(b *testing.B) {
	p := newPipeline(b, nil)
	src := uniformGrid(b, 256, 256, f32.Vec4{0.4, 0.3, 0.2, 1})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = p.Frame(context.Background(), src, 1.0/60)
	}
}
