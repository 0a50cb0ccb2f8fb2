package shader

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

// ErrUnknownKernel is returned for a Kernel outside [0, KernelCount).
var ErrUnknownKernel = errors.New("shader: unknown kernel")

//go:embed wgsl/resample.wgsl
var resampleSource string

//go:embed wgsl/blur.wgsl
var blurSource string

//go:embed wgsl/blur_cached.wgsl
var blurCachedSource string

//go:embed wgsl/downsample.wgsl
var downsampleSource string

//go:embed wgsl/upsample.wgsl
var upsampleSource string

//go:embed wgsl/threshold.wgsl
var thresholdSource string

//go:embed wgsl/combine.wgsl
var combineSource string

//go:embed wgsl/lum_hist.wgsl
var lumHistSource string

//go:embed wgsl/lum_avg.wgsl
var lumAvgSource string

//go:embed wgsl/tonemap.wgsl
var tonemapSource string

// Kernel identifies one compute shader.
type Kernel int

const (
	Resample Kernel = iota
	Blur
	BlurCached
	Downsample
	Upsample
	Threshold
	Combine
	LumHistogram
	LumAverage
	Tonemap

	// KernelCount is the number of kernels.
	KernelCount
)

type kernelInfo struct {
	name     string
	source   *string
	wgSize   [3]uint32
	inputs   int // read-only storage bindings after the uniform
	readOnly bool
}

// kernels is indexed by Kernel. LumAverage both reads and clears the
// histogram, so its first storage binding is read-write.
var kernels = [KernelCount]kernelInfo{
	Resample:     {"resample", &resampleSource, [3]uint32{256, 1, 1}, 1, true},
	Blur:         {"blur", &blurSource, [3]uint32{256, 1, 1}, 1, true},
	BlurCached:   {"blur_cached", &blurCachedSource, [3]uint32{64, 1, 1}, 1, true},
	Downsample:   {"downsample", &downsampleSource, [3]uint32{16, 16, 1}, 1, true},
	Upsample:     {"upsample", &upsampleSource, [3]uint32{16, 16, 1}, 1, true},
	Threshold:    {"threshold", &thresholdSource, [3]uint32{16, 16, 1}, 1, true},
	Combine:      {"combine", &combineSource, [3]uint32{16, 16, 1}, 2, true},
	LumHistogram: {"lum_histogram", &lumHistSource, [3]uint32{16, 16, 1}, 1, true},
	LumAverage:   {"lum_average", &lumAvgSource, [3]uint32{256, 1, 1}, 1, false},
	Tonemap:      {"tonemap", &tonemapSource, [3]uint32{16, 16, 1}, 1, true},
}

// Valid reports whether k names a kernel.
func (k Kernel) Valid() bool { return k >= 0 && k < KernelCount }

func (k Kernel) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kernel(%d)", int(k))
	}
	return kernels[k].name
}

// Source returns the WGSL source of k.
func (k Kernel) Source() (string, error) {
	if !k.Valid() {
		return "", fmt.Errorf("%w: %d", ErrUnknownKernel, int(k))
	}
	return *kernels[k].source, nil
}

// WorkgroupSize returns the @workgroup_size of k.
func (k Kernel) WorkgroupSize() [3]uint32 {
	if !k.Valid() {
		return [3]uint32{}
	}
	return kernels[k].wgSize
}

// WorkgroupCount returns the dispatch size covering a width x height
// domain. For BlurCached width is the length along the blur axis and
// height the number of lines. LumAverage always runs a single group.
func (k Kernel) WorkgroupCount(width, height int) [3]uint32 {
	if k == LumAverage {
		return [3]uint32{1, 1, 1}
	}
	wg := k.WorkgroupSize()
	if wg[0] == 0 {
		return [3]uint32{}
	}
	w, h := uint32(max(width, 1)), uint32(max(height, 1))
	return [3]uint32{(w + wg[0] - 1) / wg[0], (h + wg[1] - 1) / wg[1], 1}
}

// BindGroupLayoutEntries returns the layout of @group(0) for k: the
// uniform parameter block at binding 0, the inputs, and the output last.
func (k Kernel) BindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	if !k.Valid() {
		return nil
	}
	info := kernels[k]
	entry := func(binding uint32, t gputypes.BufferBindingType) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: t},
		}
	}

	entries := []gputypes.BindGroupLayoutEntry{entry(0, gputypes.BufferBindingTypeUniform)}
	in := gputypes.BufferBindingTypeReadOnlyStorage
	if !info.readOnly {
		in = gputypes.BufferBindingTypeStorage
	}
	for i := 0; i < info.inputs; i++ {
		entries = append(entries, entry(uint32(1+i), in))
	}
	entries = append(entries, entry(uint32(1+info.inputs), gputypes.BufferBindingTypeStorage))
	return entries
}

// CompileSPIRV compiles k to SPIR-V words.
func (k Kernel) CompileSPIRV() ([]uint32, error) {
	src, err := k.Source()
	if err != nil {
		return nil, err
	}
	words, err := CompileSPIRV(src)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", k, err)
	}
	return words, nil
}

// CompileSPIRV compiles WGSL source with naga and returns the little-endian
// SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	b, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}
