package exposure

import (
	"context"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// AverageParams is the parameter block of the reducer.
type AverageParams struct {
	MinLogLum   float32
	LogLumRange float32

	// DeltaTime is the blend factor toward the new average, in [0, 1].
	// 1 snaps to it, 0 keeps the previous value.
	DeltaTime float32

	// PixelCount is the number of texels the histogram was built from.
	PixelCount uint32
}

// NewAverageParams returns the reducer parameters matching
// NewHistogramParams(minLogLum, maxLogLum, ...) over pixels texels.
func NewAverageParams(minLogLum, maxLogLum, deltaTime float32, pixels int) AverageParams {
	return AverageParams{
		MinLogLum:   minLogLum,
		LogLumRange: maxLogLum - minLogLum,
		DeltaTime:   deltaTime,
		PixelCount:  uint32(max(pixels, 0)),
	}
}

// Rate converts a frame time in seconds into a blend factor for
// AverageParams.DeltaTime: clamp01(1 - exp(-dt*speed)).
func Rate(dt, speed float64) float32 {
	r := 1 - math.Exp(-dt*speed)
	return float32(min(max(r, 0), 1))
}

// Result is the outcome of one reduction.
type Result struct {
	// Adapted is the new adapted luminance.
	Adapted float32
	// Average is the frame's weighted average luminance.
	Average float32
	// WeightedLogAvg is the mean bucket index, minus the bucket-0 bias.
	WeightedLogAvg float32
}

type reduceShared struct {
	sums   [HistogramBins]uint64
	count0 uint32
}

// reduceDims is one group with a lane per bucket.
var reduceDims = compute.Dims{
	Group:  compute.ID{X: HistogramBins, Y: 1},
	Groups: compute.ID{X: 1, Y: 1},
}

// Reduce collapses hist into a weighted average luminance and blends it
// with prev:
//
//	weighted_log_avg = sum(count_i*i) / max(pixel_count - count_0, 1) - 1
//	average          = exp2(weighted_log_avg/254*range + min)
//	adapted          = prev + (average - prev)*dt
//
// Every lane clears the bucket it consumed, so hist is zero afterwards and
// ready for the next frame.
func Reduce(ctx context.Context, d *compute.Dispatcher, hist *compute.Counters, prev float32, p AverageParams) (Result, error) {
	if hist == nil || hist.Len() != HistogramBins {
		return Result{}, ErrHistogramSize
	}

	var res Result
	newShared := func() *reduceShared { return &reduceShared{} }

	phases := []compute.Phase[reduceShared]{func(l *compute.Lane[reduceShared]) {
		i := l.LocalIndex
		n := hist.Load(i)
		l.Shared.sums[i] = uint64(n) * uint64(i)
		if i == 0 {
			l.Shared.count0 = n
		}
		hist.Store(i, 0)
	}}
	for stride := HistogramBins / 2; stride > 0; stride >>= 1 {
		phases = append(phases, func(l *compute.Lane[reduceShared]) {
			if i := l.LocalIndex; i < stride {
				l.Shared.sums[i] += l.Shared.sums[i+stride]
			}
		})
	}
	phases = append(phases, func(l *compute.Lane[reduceShared]) {
		if l.LocalIndex == 0 {
			res = adapt(l.Shared.sums[0], l.Shared.count0, prev, p)
		}
	})

	err := compute.DispatchPhases(ctx, d, reduceDims, newShared, phases...)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// adapt evaluates the averaging formula in float64. The average is rounded
// to float32 before blending, which keeps dt == 1 and dt == 0 exact.
func adapt(total uint64, count0 uint32, prev float32, p AverageParams) Result {
	denom := max(int64(p.PixelCount)-int64(count0), 1)
	logAvg := float64(total)/float64(denom) - 1
	avg := float32(math.Exp2(logAvg/254*float64(p.LogLumRange) + float64(p.MinLogLum)))

	prev64 := float64(prev)
	adapted := prev64 + (float64(avg)-prev64)*float64(p.DeltaTime)

	return Result{
		Adapted:        float32(adapted),
		Average:        avg,
		WeightedLogAvg: float32(logAvg),
	}
}

// ReduceInto runs Reduce with the previous adapted luminance read from the
// red channel of state texel (0,0), and writes the new value back there.
func ReduceInto(ctx context.Context, d *compute.Dispatcher, hist *compute.Counters, state *grid.Grid, p AverageParams) (Result, error) {
	if state == nil || state.Width() <= 0 || state.Height() <= 0 {
		return Result{}, grid.ErrInvalidDimensions
	}
	res, err := Reduce(ctx, d, hist, state.At(0, 0)[0], p)
	if err != nil {
		return Result{}, err
	}
	state.Set(0, 0, f32.Vec4{res.Adapted, 0, 0, 1})
	return res, nil
}
