package exposure

import (
	"context"
	"errors"
	"math"

	"github.com/gogpu/postfx/internal/color"
	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// HistogramBins is the number of log-luminance buckets. Bucket 0 holds
// texels darker than the profile epsilon; 1..255 cover the log range.
const HistogramBins = 256

// Group is the workgroup shape of the histogram builder. It has exactly
// HistogramBins lanes so that lane i can own bucket i during the merge.
var Group = compute.ID{X: 16, Y: 16}

var (
	// ErrHistogramSize is returned when the counter buffer does not have
	// HistogramBins entries.
	ErrHistogramSize = errors.New("exposure: histogram must have 256 bins")

	// ErrUnknownProfile is returned by ParseProfile.
	ErrUnknownProfile = errors.New("exposure: unknown histogram profile")
)

// HistogramParams is the parameter block of the histogram builder.
type HistogramParams struct {
	MinLogLum      float32
	InvLogLumRange float32

	// Width and Height bound the metered region under ProfileParams.
	// They are clipped to the grid; zero means the full grid.
	Width, Height uint32
}

// NewHistogramParams returns the parameter block for metering log2
// luminance in [minLogLum, maxLogLum] over a width x height image.
func NewHistogramParams(minLogLum, maxLogLum float32, width, height int) HistogramParams {
	return HistogramParams{
		MinLogLum:      minLogLum,
		InvLogLumRange: 1 / (maxLogLum - minLogLum),
		Width:          uint32(max(width, 0)),
		Height:         uint32(max(height, 0)),
	}
}

// Bucket maps a luminance to its histogram bucket. Luminance below eps
// (and NaN) maps to 0. Everything else maps to
// round(clamp01((log2(lum)-min)*inv)*254)+1, in 1..255.
func Bucket(lum float32, p HistogramParams, eps float32) int {
	if !(lum >= eps) {
		return 0
	}
	logLum := float32(math.Log2(float64(lum)))
	n := min(max((logLum-p.MinLogLum)*p.InvLogLumRange, 0), 1)
	return int(math.Round(float64(n*254))) + 1
}

// Region returns the metered width and height of src under profile.
func Region(src grid.Reader, p HistogramParams, profile Profile) (w, h int) {
	w, h = src.Width(), src.Height()
	if profile == ProfileParams {
		if p.Width > 0 {
			w = min(w, int(p.Width))
		}
		if p.Height > 0 {
			h = min(h, int(p.Height))
		}
	}
	return w, h
}

// BuildHistogram adds the log-luminance histogram of src into hist. hist is
// not cleared first; the host (or the previous Reduce) does that.
//
// Every group counts its 16x16 tile into a group-shared histogram, then
// lane i adds shared bucket i into hist. Lanes past the metered region
// still clear and flush their bucket but count nothing.
func BuildHistogram(ctx context.Context, d *compute.Dispatcher, hist *compute.Counters, src grid.Reader, p HistogramParams, profile Profile) error {
	if hist == nil || hist.Len() != HistogramBins {
		return ErrHistogramSize
	}
	if src == nil || src.Width() <= 0 || src.Height() <= 0 {
		return grid.ErrInvalidDimensions
	}
	w, h := Region(src, p, profile)
	eps := profile.Epsilon()

	newShared := func() *compute.Counters { return compute.NewCounters(HistogramBins) }

	return compute.DispatchPhases(ctx, d, compute.Cover(w, h, Group), newShared,
		func(l *compute.Lane[compute.Counters]) {
			l.Shared.Store(l.LocalIndex, 0)
		},
		func(l *compute.Lane[compute.Counters]) {
			x, y := l.Global.X, l.Global.Y
			if x < w && y < h {
				lum := color.Luminance(src.At(x, y))
				l.Shared.Add(Bucket(lum, p, eps), 1)
			}
		},
		func(l *compute.Lane[compute.Counters]) {
			if n := l.Shared.Load(l.LocalIndex); n > 0 {
				hist.Add(l.LocalIndex, n)
			}
		})
}
