package bloom

import (
	"context"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/color"
	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/grid"
)

// Group is the workgroup shape of the downsample and upsample kernels.
var Group = compute.ID{X: 16, Y: 16}

// MinSample is the floor applied to every RGB channel of a downsampled
// texel. It keeps later log2 luminance finite.
const MinSample = 1e-5

// karisLumaScale scales the sRGB luma in the firefly-suppression weight.
const karisLumaScale = 0.25

// DownsampleParams configures one downsample dispatch.
type DownsampleParams struct {
	// MipLevel is the level being read. Level 0 applies the Karis average.
	MipLevel int
}

// Tap offsets of the 13-tap pattern, relative to the mapped input texel:
//
//	A . B . C
//	. D . E .
//	F . G . H
//	. I . J .
//	K . L . M
const (
	tapA = iota
	tapB
	tapC
	tapD
	tapE
	tapF
	tapG
	tapH
	tapI
	tapJ
	tapK
	tapL
	tapM
	tapCount
)

var tapOffsets = [tapCount][2]int{
	tapA: {-2, -2}, tapB: {0, -2}, tapC: {2, -2},
	tapD: {-1, -1}, tapE: {1, -1},
	tapF: {-2, 0}, tapG: {0, 0}, tapH: {2, 0},
	tapI: {-1, 1}, tapJ: {1, 1},
	tapK: {-2, 2}, tapL: {0, 2}, tapM: {2, 2},
}

// downsampleBlock is one of the five 2x2 groups the taps are averaged in.
type downsampleBlock struct {
	taps   [4]int
	weight float32
}

// downsampleBlocks partitions the weight: the inner block carries 0.5 and
// each of the four overlapping outer blocks 0.125, so the total is 1.
var downsampleBlocks = [5]downsampleBlock{
	{taps: [4]int{tapD, tapE, tapI, tapJ}, weight: 0.5},
	{taps: [4]int{tapA, tapB, tapG, tapF}, weight: 0.125},
	{taps: [4]int{tapB, tapC, tapH, tapG}, weight: 0.125},
	{taps: [4]int{tapF, tapG, tapL, tapK}, weight: 0.125},
	{taps: [4]int{tapG, tapH, tapM, tapL}, weight: 0.125},
}

// Downsample reduces src into dst with the 13-tap filter. Each output texel
// maps to the input texel at the same relative position; all taps around
// it are clamped to the edge. At mip level 0 each 2x2 block average is
// weighted by 1/(1 + luma(srgb(avg))/4) to keep single bright texels from
// dominating the chain. RGB is floored at MinSample.
func Downsample(ctx context.Context, d *compute.Dispatcher, dst *grid.Grid, src grid.Reader, p DownsampleParams) error {
	if err := grid.CheckTarget(dst, src); err != nil {
		return err
	}
	w, h := dst.Width(), dst.Height()
	sw, sh := src.Width(), src.Height()
	karis := p.MipLevel == 0

	return d.Dispatch(ctx, compute.Cover(w, h, Group), func(inv compute.Invocation) {
		x, y := inv.Global.X, inv.Global.Y
		if x >= w || y >= h {
			return
		}
		sx, sy := grid.Ratio(x, w, sw), grid.Ratio(y, h, sh)

		var taps [tapCount]f32.Vec4
		for i, o := range tapOffsets {
			taps[i] = grid.Load(src, sx+o[0], sy+o[1])
		}
		dst.Set(x, y, floorRGB(Filter13(taps, karis)))
	})
}

// Filter13 combines the 13 taps (ordered A..M, row-major as in the
// pattern above). With karis set, each block average is additionally
// scaled by its Karis weight; the weights are not renormalized.
func Filter13(taps [13]f32.Vec4, karis bool) f32.Vec4 {
	var out f32.Vec4
	for _, b := range downsampleBlocks {
		avg := grid.Scale(grid.Add(grid.Add(taps[b.taps[0]], taps[b.taps[1]]),
			grid.Add(taps[b.taps[2]], taps[b.taps[3]])), 0.25)
		wt := b.weight
		if karis {
			wt *= KarisWeight(avg)
		}
		out = grid.MulAdd(out, avg, wt)
	}
	return out
}

// KarisWeight returns 1/(1 + luma(srgb(c))*0.25).
func KarisWeight(c f32.Vec4) float32 {
	return 1 / (1 + color.Luminance(color.ToSRGB(c))*karisLumaScale)
}

func floorRGB(c f32.Vec4) f32.Vec4 {
	return f32.Vec4{max(c[0], MinSample), max(c[1], MinSample), max(c[2], MinSample), c[3]}
}
