package postfx

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/gogpu/postfx/internal/bloom"
	"github.com/gogpu/postfx/internal/exposure"
	"github.com/gogpu/postfx/internal/filter"
	"github.com/gogpu/postfx/internal/tonemap"
)

// maxBlurSigma keeps the Gaussian radius (3 sigma) within the cached blur's
// group width.
const maxBlurSigma = 16

/* Example config file (YAML; the TOML form uses the same keys) ...

workers: 8
bloom:
  enabled: true
  mips: 5
  radius: 1
  strength: 0.04
  threshold: 1.0
  knee: 0.5
  cached_blur: false
  blur_sigma: 0
exposure:
  enabled: true
  min_log_lum: -5
  max_log_lum: 10
  profile: sampled
  adapt_speed: 1.1
  key: 0.18
tonemap: aces

*/

// BloomConfig controls the bloom chain.
type BloomConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Mips is the number of downsampled levels below full resolution.
	Mips int `yaml:"mips" toml:"mips"`

	// Radius is the tent radius of the upsampler, in texels.
	Radius float32 `yaml:"radius" toml:"radius"`

	// Strength scales the bloom added onto the image.
	Strength float32 `yaml:"strength" toml:"strength"`

	// Threshold and Knee configure the bright pass. Threshold 0 feeds the
	// whole image into the chain.
	Threshold float32 `yaml:"threshold" toml:"threshold"`
	Knee      float32 `yaml:"knee" toml:"knee"`

	// CachedBlur selects the group-cached blur for the final smoothing
	// pass instead of the direct 9-tap blur.
	CachedBlur bool `yaml:"cached_blur" toml:"cached_blur"`

	// BlurSigma, when positive, replaces the cached blur's 5-tap binomial
	// with a Gaussian of this standard deviation in texels. It requires
	// CachedBlur.
	BlurSigma float64 `yaml:"blur_sigma" toml:"blur_sigma"`
}

// ExposureConfig controls automatic exposure.
type ExposureConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// MinLogLum and MaxLogLum bound the metered log2 luminance.
	MinLogLum float32 `yaml:"min_log_lum" toml:"min_log_lum"`
	MaxLogLum float32 `yaml:"max_log_lum" toml:"max_log_lum"`

	// Profile is "sampled" or "params".
	Profile string `yaml:"profile" toml:"profile"`

	// AdaptSpeed is the rate of exponential adaptation per second.
	AdaptSpeed float64 `yaml:"adapt_speed" toml:"adapt_speed"`

	// Key is the target middle grey; exposure is Key / adapted luminance.
	Key float32 `yaml:"key" toml:"key"`
}

// Config is the complete pipeline configuration.
type Config struct {
	// Workers is the dispatcher pool size. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers" toml:"workers"`

	Bloom    BloomConfig    `yaml:"bloom" toml:"bloom"`
	Exposure ExposureConfig `yaml:"exposure" toml:"exposure"`

	// Tonemap is "aces", "reinhard" or "clip".
	Tonemap string `yaml:"tonemap" toml:"tonemap"`

	// Values derived by Finalize.
	profile    exposure.Profile
	operator   tonemap.Operator
	blurKernel filter.Kernel
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Bloom: BloomConfig{
			Enabled:   true,
			Mips:      5,
			Radius:    bloom.DefaultUpsampleRadius,
			Strength:  0.04,
			Threshold: 1,
			Knee:      0.5,
		},
		Exposure: ExposureConfig{
			Enabled:    true,
			MinLogLum:  -5,
			MaxLogLum:  10,
			Profile:    exposure.ProfileSampled.String(),
			AdaptSpeed: 1.1,
			Key:        0.18,
		},
		Tonemap: tonemap.ACES.String(),
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) file over
// DefaultConfig, so keys absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse %q: %w", path, err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return c, fmt.Errorf("parse %q: %w", path, err)
		}
	default:
		return c, fmt.Errorf("%w: config extension %q", ErrInvalidConfig, ext)
	}

	return c, c.Finalize()
}

// WriteConfig writes c to path as YAML or TOML, by extension.
func WriteConfig(path string, c Config) error {
	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		b, err := yaml.Marshal(c)
		if err != nil {
			return err
		}
		buf.Write(b)
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: config extension %q", ErrInvalidConfig, ext)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Finalize fills empty names with their defaults, parses them and checks
// every numeric range.
func (c *Config) Finalize() error {
	p, err := exposure.ParseProfile(c.Exposure.Profile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.profile = p
	c.Exposure.Profile = p.String()

	op, err := tonemap.ParseOperator(c.Tonemap)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.operator = op
	c.Tonemap = op.String()

	if err := c.validate(); err != nil {
		return err
	}
	c.blurKernel = filter.Kernel{}
	if c.Bloom.BlurSigma > 0 {
		c.blurKernel = filter.GaussianKernel(c.Bloom.BlurSigma)
	}
	return nil
}

func (c *Config) validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	switch {
	case c.Workers < 0:
		return invalid("workers %d < 0", c.Workers)
	case c.Bloom.Mips < 1:
		return invalid("bloom mips %d < 1", c.Bloom.Mips)
	case c.Bloom.Radius <= 0:
		return invalid("bloom radius %v <= 0", c.Bloom.Radius)
	case c.Bloom.Strength < 0:
		return invalid("bloom strength %v < 0", c.Bloom.Strength)
	case c.Bloom.Threshold < 0:
		return invalid("bloom threshold %v < 0", c.Bloom.Threshold)
	case c.Bloom.Knee < 0 || c.Bloom.Knee > 1:
		return invalid("bloom knee %v outside [0, 1]", c.Bloom.Knee)
	case c.Bloom.BlurSigma < 0 || c.Bloom.BlurSigma > maxBlurSigma:
		return invalid("bloom blur sigma %v outside [0, %v]", c.Bloom.BlurSigma, maxBlurSigma)
	case c.Bloom.BlurSigma > 0 && !c.Bloom.CachedBlur:
		return invalid("bloom blur sigma %v needs cached_blur", c.Bloom.BlurSigma)
	case c.Exposure.MaxLogLum <= c.Exposure.MinLogLum:
		return invalid("exposure log range [%v, %v] is empty", c.Exposure.MinLogLum, c.Exposure.MaxLogLum)
	case c.Exposure.AdaptSpeed < 0:
		return invalid("exposure adapt speed %v < 0", c.Exposure.AdaptSpeed)
	case c.Exposure.Key <= 0:
		return invalid("exposure key %v <= 0", c.Exposure.Key)
	}
	return nil
}
