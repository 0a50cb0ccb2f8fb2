package main

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"
)

const (
	plotWidth  = 800
	plotHeight = 400
	plotMargin = 40
)

// sample is one frame's metering.
type sample struct {
	ev      float64
	average float32
	adapted float32
}

// plotAdaptation draws the metered and adapted log2 luminance per frame.
func plotAdaptation(path string, samples []sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("nothing to plot")
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		for _, v := range []float32{s.average, s.adapted} {
			l := math.Log2(math.Max(float64(v), 1e-6))
			lo, hi = math.Min(lo, l), math.Max(hi, l)
		}
	}
	lo, hi = math.Floor(lo)-1, math.Ceil(hi)+1

	x := func(i int) float64 {
		if len(samples) == 1 {
			return plotMargin
		}
		return plotMargin + float64(i)*(plotWidth-2*plotMargin)/float64(len(samples)-1)
	}
	y := func(v float32) float64 {
		l := math.Log2(math.Max(float64(v), 1e-6))
		return plotHeight - plotMargin - (l-lo)*(plotHeight-2*plotMargin)/(hi-lo)
	}

	dc := gg.NewContext(plotWidth, plotHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// One grid line per stop.
	dc.SetRGB(0.85, 0.85, 0.85)
	dc.SetLineWidth(1)
	for ev := lo; ev <= hi; ev++ {
		py := plotHeight - plotMargin - (ev-lo)*(plotHeight-2*plotMargin)/(hi-lo)
		dc.DrawLine(plotMargin, py, plotWidth-plotMargin, py)
		dc.Stroke()
		dc.SetRGB(0.3, 0.3, 0.3)
		dc.DrawStringAnchored(fmt.Sprintf("%+.0f", ev), plotMargin-6, py, 1, 0.5)
		dc.SetRGB(0.85, 0.85, 0.85)
	}

	series := []struct {
		r, g, b float64
		value   func(sample) float32
	}{
		{0.8, 0.2, 0.2, func(s sample) float32 { return s.average }},
		{0.1, 0.3, 0.8, func(s sample) float32 { return s.adapted }},
	}
	dc.SetLineWidth(2)
	for _, se := range series {
		dc.SetRGB(se.r, se.g, se.b)
		for i, s := range samples {
			dc.LineTo(x(i), y(se.value(s)))
		}
		dc.Stroke()
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawString("log2 luminance: metered (red), adapted (blue)", plotMargin, plotMargin/2)
	return dc.SavePNG(path)
}
