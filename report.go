package postfx

import (
	"fmt"
	"math"

	"github.com/codahale/hdrhistogram"
	"gonum.org/v1/gonum/stat"

	"github.com/gogpu/postfx/internal/color"
	"github.com/gogpu/postfx/internal/exposure"
	"github.com/gogpu/postfx/internal/grid"
)

// Luminance is recorded in fixed point with this many steps per unit.
const reportScale = 1e4

// reportMax is the largest luminance the report resolves; brighter texels
// are clamped to it.
const reportMax = 1e5

// Report summarizes the luminance distribution of a grid. It is computed
// on the CPU at full precision and is meant for tooling and tests, next to
// the 256-bucket histogram the exposure kernels use.
type Report struct {
	Pixels int
	// Dark counts texels below the sampled-profile epsilon.
	Dark int

	Mean float64
	// LogAverage is the geometric mean over texels above the epsilon.
	LogAverage float64

	P50, P95, P99, Max float64
}

// LuminanceReport computes a Report for src.
func LuminanceReport(src grid.Reader) (Report, error) {
	if src == nil || src.Width() <= 0 || src.Height() <= 0 {
		return Report{}, ErrInvalidDimensions
	}
	h := hdrhistogram.New(1, int64(reportMax*reportScale), 3)
	eps := exposure.ProfileSampled.Epsilon()

	r := Report{Pixels: src.Width() * src.Height()}
	lums := make([]float64, 0, r.Pixels)
	logs := make([]float64, 0, r.Pixels)
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			l := color.Luminance(src.At(x, y))
			if math.IsNaN(float64(l)) || l < 0 {
				l = 0
			}
			lums = append(lums, float64(l))
			if l < eps {
				r.Dark++
			} else {
				logs = append(logs, math.Log2(float64(l)))
			}
			v := int64(math.Round(float64(min(l, reportMax)) * reportScale))
			if err := h.RecordValue(max(v, 1)); err != nil {
				return Report{}, fmt.Errorf("record luminance %v: %w", l, err)
			}
		}
	}

	r.Mean = stat.Mean(lums, nil)
	if len(logs) > 0 {
		r.LogAverage = math.Exp2(stat.Mean(logs, nil))
	}
	r.P50 = float64(h.ValueAtQuantile(50)) / reportScale
	r.P95 = float64(h.ValueAtQuantile(95)) / reportScale
	r.P99 = float64(h.ValueAtQuantile(99)) / reportScale
	r.Max = float64(h.Max()) / reportScale
	return r, nil
}

func (r Report) String() string {
	return fmt.Sprintf("pixels=%d dark=%d mean=%.4g logavg=%.4g p50=%.4g p95=%.4g p99=%.4g max=%.4g",
		r.Pixels, r.Dark, r.Mean, r.LogAverage, r.P50, r.P95, r.P99, r.Max)
}
