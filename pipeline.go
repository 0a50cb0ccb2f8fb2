package postfx

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/postfx/internal/bloom"
	"github.com/gogpu/postfx/internal/compute"
	"github.com/gogpu/postfx/internal/exposure"
	"github.com/gogpu/postfx/internal/filter"
	"github.com/gogpu/postfx/internal/grid"
	"github.com/gogpu/postfx/internal/tonemap"
)

// minAdapted keeps Key/adapted finite on black frames.
const minAdapted = 1e-4

// poolBucketSize bounds how many grids of one size a Pipeline keeps.
const poolBucketSize = 8

// Exposure is the outcome of metering one frame.
type Exposure struct {
	// Average is the frame's histogram-weighted average luminance.
	Average float32
	// Adapted is the temporally smoothed luminance after this frame.
	Adapted float32
	// Exposure is the multiplier applied before tonemapping.
	Exposure float32
}

// Pipeline runs bloom, exposure and tonemapping on the CPU dispatcher.
//
// Frames must be submitted in order: the adapted luminance carried from
// one frame to the next is owned by the Pipeline, and Frame and Expose
// serialize on it. Bloom alone may run concurrently.
type Pipeline struct {
	cfg  Config
	d    *compute.Dispatcher
	pool *grid.Pool
	log  *slog.Logger

	mu     sync.Mutex
	hist   *compute.Counters
	state  *grid.Grid // 1x1, adapted luminance in R
	primed bool
	closed bool
}

// New creates a Pipeline. Without options it uses DefaultConfig.
func New(opts ...Option) (*Pipeline, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := DefaultConfig()
	if o.config != nil {
		cfg = *o.config
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	state, err := grid.New(1, 1)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:   cfg,
		d:     compute.NewDispatcher(cfg.Workers),
		pool:  grid.NewPool(poolBucketSize),
		log:   o.logger,
		hist:  compute.NewCounters(exposure.HistogramBins),
		state: state,
	}
	p.logger().Debug("postfx: pipeline created",
		"workers", p.d.Workers(),
		"bloom_mips", cfg.Bloom.Mips,
		"profile", cfg.Exposure.Profile,
		"tonemap", cfg.Tonemap)
	return p, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.log != nil {
		return p.log
	}
	return Logger()
}

// Config returns the finalized configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Close stops the dispatcher. Later calls return ErrClosed.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.d.Close()
}

func (p *Pipeline) checkOpen() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return nil
}

// Bloom returns the full-resolution bloom of src, without src itself.
//
// The bright pass output is reduced through Mips levels of 13-tap
// downsampling (Karis-weighted on the first), then rebuilt from the
// smallest level up, each level adding the tent-upsampled coarser one.
// The result is upsampled to src's size, smoothed with a separable blur and
// divided by the number of levels so that a uniform input (threshold 0)
// blooms to roughly its own color.
func (p *Pipeline) Bloom(ctx context.Context, src grid.Reader) (*grid.Grid, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	if src == nil || src.Width() <= 0 || src.Height() <= 0 {
		return nil, ErrInvalidDimensions
	}
	w, h := src.Width(), src.Height()
	bc := p.cfg.Bloom

	// Bright pass at full resolution, or the source itself.
	input := src
	if bc.Threshold > 0 {
		bright, err := p.pool.Get(w, h)
		if err != nil {
			return nil, err
		}
		defer p.pool.Put(bright)
		if err := bloom.Threshold(ctx, p.d, bright, src, bloom.ThresholdParams{Threshold: bc.Threshold, Knee: bc.Knee}); err != nil {
			return nil, fmt.Errorf("bloom threshold: %w", err)
		}
		input = bright
	}

	hw, hh := grid.LevelSize(w, h, 1)
	down, err := grid.NewMipChainFromPool(p.pool, hw, hh, bc.Mips)
	if err != nil {
		return nil, err
	}
	defer down.Release(p.pool)
	up, err := grid.NewMipChainFromPool(p.pool, hw, hh, down.Levels())
	if err != nil {
		return nil, err
	}
	defer up.Release(p.pool)

	levels := down.Levels()
	prev := input
	for i := 0; i < levels; i++ {
		if err := bloom.Downsample(ctx, p.d, down.Level(i), prev, bloom.DownsampleParams{MipLevel: i}); err != nil {
			return nil, fmt.Errorf("bloom downsample %d: %w", i, err)
		}
		prev = down.Level(i)
	}

	upParams := bloom.UpsampleParams{Radius: bc.Radius}
	if err := grid.Copy(up.Level(levels-1), down.Level(levels-1)); err != nil {
		return nil, err
	}
	for i := levels - 2; i >= 0; i-- {
		lw, lh := up.Level(i).Width(), up.Level(i).Height()
		tmp, err := p.pool.Get(lw, lh)
		if err != nil {
			return nil, err
		}
		err = bloom.Upsample(ctx, p.d, tmp, up.Level(i+1), upParams)
		if err == nil {
			err = bloom.Combine(ctx, p.d, up.Level(i), down.Level(i), tmp, 1)
		}
		p.pool.Put(tmp)
		if err != nil {
			return nil, fmt.Errorf("bloom upsample %d: %w", i, err)
		}
	}

	full, err := grid.New(w, h)
	if err != nil {
		return nil, err
	}
	scratch, err := p.pool.Get(w, h)
	if err != nil {
		return nil, err
	}
	defer p.pool.Put(scratch)

	if err := bloom.Upsample(ctx, p.d, full, up.Level(0), upParams); err != nil {
		return nil, fmt.Errorf("bloom upsample full: %w", err)
	}
	if err := p.blurPass(ctx, scratch, full, true); err != nil {
		return nil, fmt.Errorf("bloom blur: %w", err)
	}
	if err := p.blurPass(ctx, full, scratch, false); err != nil {
		return nil, fmt.Errorf("bloom blur: %w", err)
	}
	scale(full, 1/float32(levels))

	p.logger().Debug("postfx: bloom",
		"width", w, "height", h,
		"levels", levels,
		"threshold", bc.Threshold)
	return full, nil
}

func (p *Pipeline) blurPass(ctx context.Context, dst *grid.Grid, src grid.Reader, horizontal bool) error {
	if p.cfg.Bloom.CachedBlur {
		return filter.BlurCached(ctx, p.d, dst, src, filter.CachedBlurParams{Horizontal: horizontal, Kernel: p.cfg.blurKernel})
	}
	return filter.Blur(ctx, p.d, dst, src, filter.BlurParams{Horizontal: horizontal})
}

// scale multiplies the RGB of every texel of g by s.
func scale(g *grid.Grid, s float32) {
	pix := g.Pix()
	for i, c := range pix {
		pix[i] = f32.Vec4{c[0] * s, c[1] * s, c[2] * s, c[3]}
	}
}

// Composite writes src + bloom*Strength into dst.
func (p *Pipeline) Composite(ctx context.Context, dst *grid.Grid, src, bloomed grid.Reader) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	return bloom.Combine(ctx, p.d, dst, src, bloomed, p.cfg.Bloom.Strength)
}

// Expose meters src, advances the adapted luminance by dt seconds and
// returns the exposure to apply. The first call after New or Reset snaps to
// the metered value.
func (p *Pipeline) Expose(ctx context.Context, src grid.Reader, dt float64) (Exposure, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return Exposure{}, ErrClosed
	}
	if src == nil || src.Width() <= 0 || src.Height() <= 0 {
		return Exposure{}, ErrInvalidDimensions
	}

	ec := p.cfg.Exposure
	hp := exposure.NewHistogramParams(ec.MinLogLum, ec.MaxLogLum, src.Width(), src.Height())
	if err := exposure.BuildHistogram(ctx, p.d, p.hist, src, hp, p.cfg.profile); err != nil {
		p.hist.Reset()
		return Exposure{}, fmt.Errorf("exposure histogram: %w", err)
	}

	rate := exposure.Rate(dt, ec.AdaptSpeed)
	if !p.primed {
		rate = 1
	}
	w, h := exposure.Region(src, hp, p.cfg.profile)
	ap := exposure.NewAverageParams(ec.MinLogLum, ec.MaxLogLum, rate, w*h)

	res, err := exposure.ReduceInto(ctx, p.d, p.hist, p.state, ap)
	if err != nil {
		p.hist.Reset()
		return Exposure{}, fmt.Errorf("exposure reduce: %w", err)
	}
	p.primed = true

	e := Exposure{
		Average:  res.Average,
		Adapted:  res.Adapted,
		Exposure: ec.Key / max(res.Adapted, minAdapted),
	}
	p.logger().Debug("postfx: exposure",
		"average", e.Average,
		"adapted", e.Adapted,
		"exposure", e.Exposure,
		"rate", rate)
	return e, nil
}

// AdaptedLuminance returns the luminance carried into the next frame.
func (p *Pipeline) AdaptedLuminance() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.At(0, 0)[0]
}

// Reset forgets the adapted luminance. The next Expose snaps.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Clear()
	p.hist.Reset()
	p.primed = false
}

// Frame runs one full frame: bloom and composite, exposure metering on the
// composite, then tonemapping. The returned grid is owned by the caller and
// holds linear values in [0, 1].
func (p *Pipeline) Frame(ctx context.Context, src grid.Reader, dt float64) (*grid.Grid, Exposure, error) {
	if err := p.checkOpen(); err != nil {
		return nil, Exposure{}, err
	}
	if src == nil || src.Width() <= 0 || src.Height() <= 0 {
		return nil, Exposure{}, ErrInvalidDimensions
	}
	w, h := src.Width(), src.Height()

	hdr, err := p.pool.Get(w, h)
	if err != nil {
		return nil, Exposure{}, err
	}
	defer p.pool.Put(hdr)

	if p.cfg.Bloom.Enabled {
		bloomed, err := p.Bloom(ctx, src)
		if err != nil {
			return nil, Exposure{}, err
		}
		err = p.Composite(ctx, hdr, src, bloomed)
		p.pool.Put(bloomed)
		if err != nil {
			return nil, Exposure{}, fmt.Errorf("bloom composite: %w", err)
		}
	} else if err := grid.Copy(hdr, src); err != nil {
		return nil, Exposure{}, err
	}

	e := Exposure{Exposure: 1}
	if p.cfg.Exposure.Enabled {
		if e, err = p.Expose(ctx, hdr, dt); err != nil {
			return nil, Exposure{}, err
		}
	}

	out, err := grid.New(w, h)
	if err != nil {
		return nil, Exposure{}, err
	}
	if err := tonemap.Apply(ctx, p.d, out, hdr, e.Exposure, p.cfg.operator); err != nil {
		return nil, Exposure{}, fmt.Errorf("tonemap: %w", err)
	}

	p.logger().Info("postfx: frame",
		"width", w, "height", h,
		"average", e.Average,
		"adapted", e.Adapted,
		"exposure", e.Exposure)
	return out, e, nil
}
