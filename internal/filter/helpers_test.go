package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// Test helper functions shared across filter tests.

func newDispatcher(t testing.TB) *compute.Dispatcher {
	t.Helper()
	d := compute.NewDispatcher(4)
	t.Cleanup(d.Close)
	return d
}

// filledGrid creates a grid filled with c.
func filledGrid(t testing.TB, w, h int, c f32.Vec4) *grid.Grid {
	t.Helper()
	g, err := grid.Filled(w, h, c)
	require.NoError(t, err)
	return g
}

// emptyGrid creates a zeroed grid.
func emptyGrid(t testing.TB, w, h int) *grid.Grid {
	t.Helper()
	return filledGrid(t, w, h, f32.Vec4{})
}

// noiseGrid creates a grid of deterministic pseudo-random HDR values.
func noiseGrid(t testing.TB, w, h int, seed int64) *grid.Grid {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	g := emptyGrid(t, w, h)
	for i := range g.Pix() {
		g.Pix()[i] = f32.Vec4{rng.Float32() * 8, rng.Float32(), rng.Float32() * 2, 1}
	}
	return g
}

// directConvolve is a scalar reference for one blur pass with edge clamping.
func directConvolve(src grid.Reader, k Kernel, horizontal bool) *grid.Grid {
	w, h := src.Width(), src.Height()
	out, _ := grid.New(w, h)
	ax, ay := 0, 1
	if horizontal {
		ax, ay = 1, 0
	}
	r := k.Radius()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for i := -r; i <= r; i++ {
				s := grid.Load(src, x+i*ax, y+i*ay)
				wt := float64(k.Weight(i))
				for c := 0; c < 4; c++ {
					acc[c] += float64(s[c]) * wt
				}
			}
			out.Set(x, y, f32.Vec4{float32(acc[0]), float32(acc[1]), float32(acc[2]), float32(acc[3])})
		}
	}
	return out
}
