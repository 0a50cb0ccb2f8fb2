package tonemap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

func TestParseOperator(t *testing.T) {
	for _, op := range []Operator{ACES, Reinhard, Clip} {
		got, err := ParseOperator(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	got, err := ParseOperator(" ACES ")
	require.NoError(t, err)
	assert.Equal(t, ACES, got)

	_, err = ParseOperator("filmic")
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestOperatorMap(t *testing.T) {
	for _, op := range []Operator{ACES, Reinhard, Clip} {
		t.Run(op.String(), func(t *testing.T) {
			assert.InDelta(t, 0, op.Map(0), 1e-6)
			assert.InDelta(t, 0, op.Map(-3), 1e-6)
			prev := float32(-1)
			for v := float32(0); v < 100; v += 0.25 {
				m := op.Map(v)
				require.GreaterOrEqual(t, m, prev, "v=%v", v)
				require.LessOrEqual(t, m, float32(1))
				prev = m
			}
		})
	}
	assert.Equal(t, float32(0.5), Reinhard.Map(1))
	assert.Equal(t, float32(1), Clip.Map(7))
	assert.InDelta(t, 0.8038, ACES.Map(1), 1e-3)
}

func TestApply(t *testing.T) {
	d := compute.NewDispatcher(2)
	defer d.Close()

	src, err := grid.Filled(9, 5, f32.Vec4{0.5, 1, 2, 0.25})
	require.NoError(t, err)
	dst, err := grid.New(9, 5)
	require.NoError(t, err)

	require.NoError(t, Apply(context.Background(), d, dst, src, 2, Reinhard))
	for _, got := range dst.Pix() {
		assert.InDelta(t, 0.5, got[0], 1e-6)
		assert.InDelta(t, 2.0/3, got[1], 1e-6)
		assert.InDelta(t, 0.8, got[2], 1e-6)
		assert.Equal(t, float32(0.25), got[3])
	}

	small, err := grid.New(3, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, Apply(context.Background(), d, small, src, 1, ACES), grid.ErrSizeMismatch)
	assert.ErrorIs(t, Apply(context.Background(), d, src, src, 1, ACES), grid.ErrAliased)
}
